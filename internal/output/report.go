package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// GenerateReport renders result in the named format and writes it to w.
func GenerateReport(w io.Writer, result *domain.ActuarialResult, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	data, err := f.Format(result)
	if err != nil {
		return fmt.Errorf("failed to format %s report: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// Extension is the file extension conventionally used for a format.
func Extension(format string) string {
	switch n := NormalizeFormatName(format); {
	case strings.HasPrefix(n, "csv"):
		return "csv"
	case n == "json":
		return "json"
	default:
		return "txt"
	}
}
