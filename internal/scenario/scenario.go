// Package scenario turns user supplied scenario files (parties, their payment
// channels and the debts between them) into validated settlement requests.
package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"cashflow/internal/settlement"
	"cashflow/pkg/config"
	"cashflow/pkg/domain"
	"cashflow/pkg/errors"
	"cashflow/pkg/validator"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// File is the on-disk and over-the-wire shape of a scenario.
type File struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Intermediary names the party bridging incompatible channels. Empty
	// means the configured default position.
	Intermediary        string  `yaml:"intermediary,omitempty" json:"intermediary,omitempty" validate:"omitempty,party_name"`
	DisableIntermediary bool    `yaml:"disable_intermediary,omitempty" json:"disable_intermediary,omitempty"`
	Parties             []Party `yaml:"parties" json:"parties" validate:"required,min=1,dive"`
	Debts               []Debt  `yaml:"debts" json:"debts" validate:"dive"`
}

type Party struct {
	Name     string   `yaml:"name" json:"name" validate:"required,party_name"`
	Channels []string `yaml:"channels" json:"channels" validate:"required,min=1,dive,required,channel_name"`
}

type Debt struct {
	From   string          `yaml:"from" json:"from" validate:"required,party_name"`
	To     string          `yaml:"to" json:"to" validate:"required,party_name,nefield=From"`
	Amount decimal.Decimal `yaml:"amount" json:"amount" validate:"required,gt=0"`
}

// Limits bound the size of accepted scenarios.
type Limits struct {
	MaxParties          int
	MaxChannels         int
	MaxAmount           int64
	DefaultIntermediary int
}

// DefaultLimits mirrors the bounds of the interactive tool: 100 parties, 10
// channels each, amounts up to 1,000,000, world bank first.
func DefaultLimits() Limits {
	return Limits{
		MaxParties:          100,
		MaxChannels:         10,
		MaxAmount:           1000000,
		DefaultIntermediary: domain.DefaultIntermediary,
	}
}

// LimitsFromConfig reads the scenario bounds from service configuration.
func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		MaxParties:          cfg.Settlement.MaxParties,
		MaxChannels:         cfg.Settlement.MaxChannels,
		MaxAmount:           cfg.Settlement.MaxAmount,
		DefaultIntermediary: cfg.Settlement.Intermediary,
	}
}

// Load reads a scenario from path. Files ending in .json are decoded as JSON,
// everything else as YAML.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario")
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Parse(data, format)
}

// Parse decodes a scenario in the given format ("json" or "yaml"). Unknown
// fields are rejected.
func Parse(data []byte, format string) (*File, error) {
	var f File

	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidScenario, err.Error())
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidScenario, err.Error())
		}
	default:
		return nil, errors.Wrap(errors.ErrInvalidScenario, fmt.Sprintf("unsupported format %q", format))
	}

	return &f, nil
}

// Build validates f against v and limits and converts it into a settlement
// request. Repeated debts between the same ordered pair are summed.
func Build(f *File, v *validator.Validator, limits Limits) (*settlement.Request, error) {
	Normalize(f)

	if err := v.Validate(f); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidScenario, err.Error())
	}

	n := len(f.Parties)
	if n > limits.MaxParties {
		return nil, errors.Wrap(errors.ErrInvalidScenario,
			fmt.Sprintf("%d parties exceed the limit of %d", n, limits.MaxParties))
	}
	if len(f.Debts) > n*n {
		return nil, errors.Wrap(errors.ErrTooManyDebts,
			fmt.Sprintf("%d debts for %d parties", len(f.Debts), n))
	}

	index := make(map[string]int, n)
	parties := make([]domain.Party, n)
	for i, p := range f.Parties {
		if _, dup := index[p.Name]; dup {
			return nil, errors.Wrap(errors.ErrDuplicateParty, p.Name)
		}
		index[p.Name] = i

		channels := domain.NewChannelSet(p.Channels...)
		if channels.Len() > limits.MaxChannels {
			return nil, errors.Wrap(errors.ErrInvalidScenario,
				fmt.Sprintf("party %q has %d channels, limit is %d", p.Name, channels.Len(), limits.MaxChannels))
		}
		parties[i] = domain.Party{Name: p.Name, Channels: channels}
	}

	debts := domain.NewDebtMatrix(n)
	for _, d := range f.Debts {
		from, ok := index[d.From]
		if !ok {
			return nil, errors.Wrap(errors.ErrUnknownParty, d.From)
		}
		to, ok := index[d.To]
		if !ok {
			return nil, errors.Wrap(errors.ErrUnknownParty, d.To)
		}
		if from == to {
			return nil, errors.Wrap(errors.ErrSelfDebt, d.From)
		}

		amount, err := wholeAmount(d.Amount, limits.MaxAmount)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("debt %s -> %s", d.From, d.To))
		}
		if debts[from][to] > math.MaxInt64-amount {
			return nil, errors.Wrap(errors.ErrAmountOverflow, fmt.Sprintf("debt %s -> %s", d.From, d.To))
		}
		debts[from][to] += amount
	}

	intermediary, err := resolveIntermediary(f, index, limits)
	if err != nil {
		return nil, err
	}

	return &settlement.Request{
		Parties:      parties,
		Debts:        debts,
		Intermediary: intermediary,
	}, nil
}

// Normalize trims surrounding whitespace from every identifier in f.
func Normalize(f *File) {
	f.Intermediary = validator.Sanitize(f.Intermediary)
	for i := range f.Parties {
		f.Parties[i].Name = validator.Sanitize(f.Parties[i].Name)
		for j := range f.Parties[i].Channels {
			f.Parties[i].Channels[j] = validator.Sanitize(f.Parties[i].Channels[j])
		}
	}
	for i := range f.Debts {
		f.Debts[i].From = validator.Sanitize(f.Debts[i].From)
		f.Debts[i].To = validator.Sanitize(f.Debts[i].To)
	}
}

func wholeAmount(d decimal.Decimal, max int64) (int64, error) {
	if !d.Equal(d.Truncate(0)) {
		return 0, errors.Wrap(errors.ErrInvalidScenario, fmt.Sprintf("amount %s is not a whole number", d))
	}
	if d.LessThanOrEqual(decimal.Zero) || d.GreaterThan(decimal.NewFromInt(max)) {
		return 0, errors.Wrap(errors.ErrInvalidScenario, fmt.Sprintf("amount %s outside 1..%d", d, max))
	}
	return d.IntPart(), nil
}

func resolveIntermediary(f *File, index map[string]int, limits Limits) (int, error) {
	switch {
	case f.DisableIntermediary:
		if f.Intermediary != "" {
			return 0, errors.Wrap(errors.ErrInvalidScenario, "intermediary named while disabled")
		}
		return domain.NoIntermediary, nil
	case f.Intermediary != "":
		idx, ok := index[f.Intermediary]
		if !ok {
			return 0, errors.Wrap(errors.ErrUnknownParty, fmt.Sprintf("intermediary %q", f.Intermediary))
		}
		return idx, nil
	default:
		return limits.DefaultIntermediary, nil
	}
}
