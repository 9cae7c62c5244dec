package tables

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

// Source looks up a raw decrement table. Implementations return a
// *domain.TableNotFoundError when the code or gender is unknown.
type Source interface {
	Lookup(ctx context.Context, code string, gender domain.Gender) (*DecrementTable, error)
}

// Lister is implemented by sources that can enumerate their table codes.
type Lister interface {
	Codes(ctx context.Context) ([]string, error)
}

// gompertzMakeham describes a parametric table: mu(x) = A + B*c^x.
type gompertzMakeham struct {
	A, B, C float64
	// Terminal forces q=1 at the last age (mortality tables close out).
	Terminal bool
}

func (g gompertzMakeham) rates(maxAge int) []float64 {
	rates := make([]float64, maxAge+1)
	lnC := math.Log(g.C)
	for x := 0; x <= maxAge; x++ {
		// integrated force over [x, x+1)
		force := g.A + g.B*math.Pow(g.C, float64(x))*(g.C-1)/lnC
		rates[x] = math.Min(1, 1-math.Exp(-force))
	}
	if g.Terminal {
		rates[maxAge] = 1
	}
	return rates
}

// builtinLaws are Gompertz-Makeham fits used when no published table is
// configured. Load the published tables through FileSource or the sqlite
// store for production valuations.
var builtinLaws = map[string]map[domain.Gender]gompertzMakeham{
	"BR_EMS_2021": {
		domain.GenderMale:   {A: 0.00040, B: 0.000025, C: 1.10, Terminal: true},
		domain.GenderFemale: {A: 0.00020, B: 0.000012, C: 1.10, Terminal: true},
	},
	"BR_EMS_2015": {
		domain.GenderMale:   {A: 0.00050, B: 0.000030, C: 1.10, Terminal: true},
		domain.GenderFemale: {A: 0.00025, B: 0.000015, C: 1.10, Terminal: true},
	},
	"AT_2000": {
		domain.GenderMale:   {A: 0.00030, B: 0.000020, C: 1.10, Terminal: true},
		domain.GenderFemale: {A: 0.00015, B: 0.000010, C: 1.10, Terminal: true},
	},
	"ALVARO_VINDAS": {
		domain.GenderMale:   {A: 0.00030, B: 0.0000085, C: math.Exp(0.12)},
		domain.GenderFemale: {A: 0.00030, B: 0.0000085, C: math.Exp(0.12)},
		domain.GenderUnisex: {A: 0.00030, B: 0.0000085, C: math.Exp(0.12)},
	},
}

// BuiltinSource serves the parametric tables compiled into the binary.
type BuiltinSource struct{}

// Lookup implements Source.
func (BuiltinSource) Lookup(_ context.Context, code string, gender domain.Gender) (*DecrementTable, error) {
	laws, ok := builtinLaws[code]
	if !ok {
		return nil, &domain.TableNotFoundError{Code: code, Gender: gender}
	}
	law, ok := laws[gender]
	if !ok {
		return nil, &domain.TableNotFoundError{Code: code, Gender: gender}
	}
	return NewDecrementTable(code, gender, 0, law.rates(domain.MaxAge))
}

// Codes implements Lister.
func (BuiltinSource) Codes(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(builtinLaws))
	for code := range builtinLaws {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// TableFile is the on-disk YAML layout of one table code.
type TableFile struct {
	Code   string               `yaml:"code"`
	Kind   string               `yaml:"kind,omitempty"`
	MinAge int                  `yaml:"min_age"`
	Rates  map[string][]float64 `yaml:"rates"`
}

// ParseTableFile decodes a YAML table document.
func ParseTableFile(data []byte) (*TableFile, error) {
	var tf TableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse table YAML: %w", err)
	}
	if tf.Code == "" {
		return nil, fmt.Errorf("table file has no code")
	}
	if len(tf.Rates) == 0 {
		return nil, fmt.Errorf("table %s has no rates", tf.Code)
	}
	return &tf, nil
}

// Tables builds one DecrementTable per gender key in the file.
func (tf *TableFile) Tables() ([]*DecrementTable, error) {
	keys := make([]string, 0, len(tf.Rates))
	for k := range tf.Rates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*DecrementTable, 0, len(keys))
	for _, k := range keys {
		g := domain.Gender(strings.ToUpper(k))
		switch g {
		case domain.GenderMale, domain.GenderFemale, domain.GenderUnisex:
		default:
			return nil, fmt.Errorf("table %s: unknown gender key %q", tf.Code, k)
		}
		t, err := NewDecrementTable(tf.Code, g, tf.MinAge, tf.Rates[k])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// FileSource reads tables from <Dir>/<CODE>.yaml.
type FileSource struct {
	Dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// Lookup implements Source.
func (fs *FileSource) Lookup(_ context.Context, code string, gender domain.Gender) (*DecrementTable, error) {
	data, err := fs.read(code)
	if err != nil {
		return nil, err
	}
	tf, err := ParseTableFile(data)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", code, err)
	}
	rates, ok := tf.Rates[strings.ToLower(string(gender))]
	if !ok {
		return nil, &domain.TableNotFoundError{Code: code, Gender: gender}
	}
	return NewDecrementTable(code, gender, tf.MinAge, rates)
}

func (fs *FileSource) read(code string) ([]byte, error) {
	for _, name := range []string{code + ".yaml", strings.ToLower(code) + ".yaml", code + ".yml"} {
		data, err := os.ReadFile(filepath.Join(fs.Dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read table %s: %w", code, err)
		}
	}
	return nil, &domain.TableNotFoundError{Code: code}
}

// Codes implements Lister.
func (fs *FileSource) Codes(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(fs.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", fs.Dir, err)
	}
	var codes []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		codes = append(codes, strings.TrimSuffix(name, ext))
	}
	sort.Strings(codes)
	return codes, nil
}

// ChainSource tries each source in order; the first hit wins. Only
// not-found errors fall through to the next source.
type ChainSource []Source

// Lookup implements Source.
func (c ChainSource) Lookup(ctx context.Context, code string, gender domain.Gender) (*DecrementTable, error) {
	for _, s := range c {
		t, err := s.Lookup(ctx, code, gender)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, domain.ErrTableNotFound) {
			return nil, err
		}
	}
	return nil, &domain.TableNotFoundError{Code: code, Gender: gender}
}

// Codes implements Lister, merging the codes of every listing source.
func (c ChainSource) Codes(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var codes []string
	for _, s := range c {
		l, ok := s.(Lister)
		if !ok {
			continue
		}
		cs, err := l.Codes(ctx)
		if err != nil {
			return nil, err
		}
		for _, code := range cs {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	sort.Strings(codes)
	return codes, nil
}
