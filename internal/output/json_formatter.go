package output

import (
	json "github.com/goccy/go-json"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// JSONFormatter serializes the full result, including the survival curve and
// monthly projection, as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.ActuarialResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
