package evaluation

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

const (
	EventEvaluationStart    EventType = "evaluation_start"
	EventEvaluationComplete EventType = "evaluation_complete"
	EventFoldStart          EventType = "fold_start"
	EventModelStart         EventType = "model_start"
	EventModelComplete      EventType = "model_complete"
)

// ProgressEvent represents a progress update. Fold fields are zero outside
// cross-validation.
type ProgressEvent struct {
	EventType   EventType
	ModelName   string
	ModelNum    int
	TotalModels int
	Fold        int
	TotalFolds  int
	DurationMs  int64
	Details     map[string]any
}

// OnProgress registers a progress listener
func (h *Harness) OnProgress(listener ProgressListener) {
	h.progressMu.Lock()
	defer h.progressMu.Unlock()
	h.listeners = append(h.listeners, listener)
}

func (h *Harness) notifyProgress(event ProgressEvent) {
	h.progressMu.Lock()
	listeners := make([]ProgressListener, len(h.listeners))
	copy(listeners, h.listeners)
	h.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}
