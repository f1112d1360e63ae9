// Package report renders training results and run history as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"vitalsfirst/db"
	"vitalsfirst/triage"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
)

const unavailable = "unavailable"

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// WriteTraining prints the evaluation summary, the per-class report and the
// labeled confusion matrix.
func WriteTraining(w io.Writer, r *triage.Report) error {
	auc := unavailable
	if r.ROCAUCAvailable() {
		auc = formatFloat(*r.MacroROCAUC)
	}
	split := "random"
	if r.Stratified {
		split = "stratified"
	}

	summary := newTable().
		Headers("Metric", "Value").
		Row("Accuracy", formatFloat(r.Accuracy)).
		Row("Macro F1", formatFloat(r.MacroF1)).
		Row("Macro ROC-AUC", auc).
		Row("Split", fmt.Sprintf("%s (%d train / %d test)", split, r.TrainSize, r.TestSize))

	perClass := newTable().Headers("Class", "Precision", "Recall", "F1", "Support")
	for _, c := range r.PerClass {
		perClass.Row(c.Label, formatFloat(c.Precision), formatFloat(c.Recall), formatFloat(c.F1), strconv.Itoa(c.Support))
	}
	perClass.Row("macro avg", formatFloat(r.MacroAvg.Precision), formatFloat(r.MacroAvg.Recall), formatFloat(r.MacroAvg.F1), strconv.Itoa(r.MacroAvg.Support))
	perClass.Row("weighted avg", formatFloat(r.WeightedAvg.Precision), formatFloat(r.WeightedAvg.Recall), formatFloat(r.WeightedAvg.F1), strconv.Itoa(r.WeightedAvg.Support))

	headers := append([]string{"true \\ predicted"}, r.ConfusionMatrix.Labels...)
	matrix := newTable().Headers(headers...)
	for i, label := range r.ConfusionMatrix.Labels {
		row := []string{label}
		for _, count := range r.ConfusionMatrix.Counts[i] {
			row = append(row, strconv.Itoa(count))
		}
		matrix.Row(row...)
	}

	sections := []string{
		titleStyle.Render("Evaluation"), summary.String(),
		titleStyle.Render("Classification report"), perClass.String(),
		titleStyle.Render("Confusion matrix"), matrix.String(),
	}
	for _, section := range sections {
		if _, err := fmt.Fprintln(w, section); err != nil {
			return err
		}
	}
	for _, warning := range r.Warnings {
		if _, err := fmt.Fprintln(w, warningStyle.Render("warning: "+warning)); err != nil {
			return err
		}
	}
	return nil
}

// WriteHistory prints recorded training runs, newest first.
func WriteHistory(w io.Writer, logs []db.TrainingLog) error {
	if len(logs) == 0 {
		_, err := fmt.Fprintln(w, "No training runs recorded.")
		return err
	}
	t := newTable().Headers("Trained at", "Run", "Model", "Accuracy", "Macro F1", "ROC-AUC", "Split", "Rows")
	for _, log := range logs {
		auc := unavailable
		if log.MacroROCAUC != nil {
			auc = formatFloat(*log.MacroROCAUC)
		}
		split := "random"
		if log.Stratified {
			split = "stratified"
		}
		t.Row(
			log.TrainedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(log.RunID),
			log.ModelName,
			formatFloat(log.Accuracy),
			formatFloat(log.MacroF1),
			auc,
			split,
			strconv.Itoa(log.DataPoints),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// WritePredictions prints recorded console predictions, newest first.
func WritePredictions(w io.Writer, logs []db.PredictionLog) error {
	if len(logs) == 0 {
		_, err := fmt.Fprintln(w, "No predictions recorded.")
		return err
	}
	t := newTable().Headers("Predicted at", "Label", "Confidence", "Artifacts")
	for _, log := range logs {
		t.Row(
			log.PredictedAt.Local().Format("2006-01-02 15:04:05"),
			log.PredictedLabel,
			formatFloat(log.Confidence),
			shortID(log.PairID),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
