package ui

import (
	"fmt"
	"io"

	"github.com/kelsos/solmint/internal/models"
)

// FormatNotice renders a notice with the icon and color of its level.
func FormatNotice(notice models.Notice) string {
	switch notice.Level {
	case models.NoticeSuccess:
		return FormatSuccess(notice.Message)
	case models.NoticeError:
		return FormatError(notice.Message)
	default:
		return FormatInfo(notice.Message)
	}
}

// WriterNotifier prints notices to a writer, one per line.
type WriterNotifier struct {
	Out io.Writer
}

// Notify prints notice.
func (w WriterNotifier) Notify(notice models.Notice) {
	fmt.Fprintln(w.Out, FormatNotice(notice))
}
