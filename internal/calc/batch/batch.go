package batch

import (
	"fmt"
	"net/http"

	duct "Ductsizer/internal/calc/duct"
	"Ductsizer/internal/calc/units"
)

// MaxItems bounds one batch; each item is up to a few thousand scan steps.
const MaxItems = 200

type Input struct {
	Items []duct.Request `json:"items"`
}

// Item is one sized request, or the reason it could not be sized.
type Item struct {
	Index  int            `json:"index"`
	Result *duct.Response `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Status int            `json:"status"`
}

type Result struct {
	Count  int    `json:"count"`
	Failed int    `json:"failed"`
	Items  []Item `json:"items"`
}

// Calculate sizes every item independently. A failing item does not stop
// the batch.
func Calculate(in Input, fallback units.System) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, fmt.Errorf("%w: no items", duct.ErrInvalidInput)
	}
	if len(in.Items) > MaxItems {
		return Result{}, fmt.Errorf("%w: at most %d items per batch", duct.ErrInvalidInput, MaxItems)
	}

	out := Result{Items: make([]Item, 0, len(in.Items))}
	for i, req := range in.Items {
		item := Size(i, req, fallback)
		if item.Error != "" {
			out.Failed++
		}
		out.Items = append(out.Items, item)
	}
	out.Count = len(out.Items)
	return out, nil
}

// Size runs one request through the calculator.
func Size(index int, req duct.Request, fallback units.System) Item {
	sys, spec, err := req.Resolve(fallback)
	if err == nil {
		var table duct.Table
		table, err = duct.Generate(spec)
		if err == nil {
			resp := duct.Present(table, sys)
			return Item{Index: index, Result: &resp, Status: http.StatusOK}
		}
	}
	return Item{Index: index, Error: duct.ErrorMessage(err), Status: duct.StatusFor(err)}
}
