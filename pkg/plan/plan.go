// Package plan loads the authoritative item list and maps report item names
// onto it.
//
// The list arrives as the investment_plan array of a JSON strategy file
// produced by the spreadsheet loader. Reports name the same funds with drift
// (share classes, feeder markers, embedded codes), so every report name is
// resolved through a Mapper before it is compared across sources.
package plan

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agentstation/quorum/pkg/errors"
)

// Item is one authoritative plan entry.
type Item struct {
	Name string `json:"fund_name" validate:"required_without=Code"`
	Code string `json:"fund_code"`
}

type strategyFile struct {
	InvestmentPlan []json.RawMessage `json:"investment_plan"`
}

var validate = validator.New()

// Load reads the plan from a strategy file at path.
func Load(path string) ([]Item, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from input discovery
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("plan", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a strategy file held in memory. Entries that are not objects
// or carry neither a name nor a code are skipped; an empty plan is an error.
func Parse(data []byte, name string) ([]Item, error) {
	var f strategyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	var items []Item
	for _, raw := range f.InvestmentPlan {
		var it Item
		if err := json.Unmarshal(raw, &it); err != nil {
			continue
		}
		it.Name = strings.TrimSpace(it.Name)
		it.Code = strings.TrimSpace(it.Code)
		if it.Name == "" && it.Code == "" {
			continue
		}
		items = append(items, it)
	}
	if err := Validate(items); err != nil {
		return nil, err
	}
	return items, nil
}

// Validate checks that the plan names at least one item and that every entry
// is identifiable.
func Validate(items []Item) error {
	if len(Names(items)) == 0 {
		return errors.NewValidationError("investment_plan", len(items), "no named items")
	}
	for _, it := range items {
		if err := validate.Struct(it); err != nil {
			return errors.WrapValidation("investment_plan", err)
		}
	}
	return nil
}

// Names returns the non-empty item names in plan order.
func Names(items []Item) []string {
	var out []string
	for _, it := range items {
		if it.Name != "" {
			out = append(out, it.Name)
		}
	}
	return out
}
