package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/napr/internal/classifier"
	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/utils"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Answers holds the raw fields collected by the interactive form.
type Answers struct {
	Name        string
	Description string
	DatasetPath string
	Target      string
	Drop        string
	Split       string
	Seed        string
	Average     string
	Kinds       []string
}

// DefaultExperiment returns the starter experiment written by `napr init`.
func DefaultExperiment(name string) *models.ExperimentSpec {
	if name == "" {
		name = "my-experiment"
	}
	return &models.ExperimentSpec{
		SpecIdentity: models.SpecIdentity{
			Name:        name,
			Description: "Compare baseline classifiers on a labelled dataset",
		},
		Dataset: models.DatasetConfig{Path: "data.csv", Target: "class"},
		Config: models.EvalConfig{
			Split:   0.2,
			Seed:    utils.Ptr(int64(42)),
			Average: string(metrics.AverageWeighted),
		},
		Models: []models.ModelConfig{
			{Kind: string(classifier.KindKNN), Params: map[string]any{"n_neighbors": 5}},
			{Kind: string(classifier.KindGaussianNB)},
			{Kind: string(classifier.KindDummy), Params: map[string]any{"strategy": "most_frequent"}},
		},
	}
}

// RunExperimentWizard runs an interactive huh form to collect an experiment.
// If initialName is non-empty, it pre-populates the name field.
func RunExperimentWizard(in io.Reader, out io.Writer, initialName string) (*models.ExperimentSpec, error) {
	a := Answers{
		Name:    initialName,
		Target:  "class",
		Split:   "0.2",
		Seed:    "42",
		Average: string(metrics.AverageWeighted),
		Kinds:   []string{string(classifier.KindKNN), string(classifier.KindGaussianNB)},
	}

	kindOptions := make([]huh.Option[string], 0, len(classifier.Kinds()))
	for _, k := range classifier.Kinds() {
		kindOptions = append(kindOptions, huh.NewOption(string(k), string(k)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Experiment name").
				Placeholder("my-experiment").
				Value(&a.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Description").
				Value(&a.Description),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Dataset path").
				Description("CSV file, optionally .gz, .bz2 or .zst compressed").
				Placeholder("data.csv").
				Value(&a.DatasetPath).
				Validate(required("dataset path")),
			huh.NewInput().
				Title("Target column").
				Value(&a.Target).
				Validate(required("target column")),
			huh.NewInput().
				Title("Columns to drop").
				Description("Comma-separated").
				Value(&a.Drop),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Evaluation fraction").
				Value(&a.Split).
				Validate(func(s string) error {
					_, err := parseSplit(s)
					return err
				}),
			huh.NewInput().
				Title("Seed").
				Description("Leave empty for a random split").
				Value(&a.Seed).
				Validate(func(s string) error {
					_, err := parseSeed(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Averaging").
				Options(
					huh.NewOption("weighted", string(metrics.AverageWeighted)),
					huh.NewOption("macro", string(metrics.AverageMacro)),
					huh.NewOption("micro", string(metrics.AverageMicro)),
				).
				Value(&a.Average),
			huh.NewMultiSelect[string]().
				Title("Classifiers").
				Options(kindOptions...).
				Value(&a.Kinds).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("select at least one classifier")
					}
					return nil
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return a.Spec()
}

// Spec converts the form answers into an experiment.
func (a Answers) Spec() (*models.ExperimentSpec, error) {
	split, err := parseSplit(a.Split)
	if err != nil {
		return nil, err
	}
	seed, err := parseSeed(a.Seed)
	if err != nil {
		return nil, err
	}

	spec := &models.ExperimentSpec{
		SpecIdentity: models.SpecIdentity{
			Name:        strings.TrimSpace(a.Name),
			Description: strings.TrimSpace(a.Description),
		},
		Dataset: models.DatasetConfig{
			Path:   strings.TrimSpace(a.DatasetPath),
			Target: strings.TrimSpace(a.Target),
			Drop:   splitAndTrim(a.Drop),
		},
		Config: models.EvalConfig{
			Split:   split,
			Seed:    seed,
			Average: a.Average,
		},
	}
	for _, k := range a.Kinds {
		spec.Models = append(spec.Models, models.ModelConfig{Kind: k})
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// GenerateExperimentYAML renders an experiment.yaml for the given spec.
func GenerateExperimentYAML(spec *models.ExperimentSpec) (string, error) {
	var buf strings.Builder
	buf.WriteString("# napr experiment: run with `napr eval <this file>`\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return "", fmt.Errorf("failed to render experiment: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to render experiment: %w", err)
	}
	return buf.String(), nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func parseSplit(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f >= 1 {
		return 0, fmt.Errorf("evaluation fraction must be a number in (0, 1)")
	}
	return f, nil
}

func parseSeed(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("seed must be an integer")
	}
	return &n, nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
