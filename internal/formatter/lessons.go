package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/boshu2/playbook/internal/types"
)

// Output formats accepted by the list commands.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ErrUnknownFormat reports an unsupported --output value.
var ErrUnknownFormat = fmt.Errorf("unknown output format")

// RenderLessons writes lessons in the requested format. Table output shows
// one row per lesson with the problem text clipped; json output is an
// indented array, suitable for piping.
func RenderLessons(w io.Writer, lessons []types.Lesson, format string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, lessons)
	case FormatTable, "":
		return renderLessonTable(w, lessons)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderLessonTable(w io.Writer, lessons []types.Lesson) error {
	if len(lessons) == 0 {
		_, err := fmt.Fprintln(w, "No lessons.")
		return err
	}

	t := NewTable(w, "ID", "CONFIDENCE", "OUTCOMES", "AGE", "PROBLEM")
	t.SetMaxWidth(4, 60)
	for i := range lessons {
		l := &lessons[i]
		t.AddRow(
			l.ID,
			fmt.Sprintf("%.2f", l.Confidence),
			fmt.Sprintf("%d", l.TotalOutcomes()),
			l.CreatedAt.Format("2006-01-02"),
			l.Problem,
		)
	}
	return t.Render()
}

// WriteJSON writes v as indented JSON without HTML escaping.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
