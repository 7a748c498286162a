package syncer

import (
	"time"

	custom_errors "github-activity-sync/internal/errors"
	"github-activity-sync/internal/model"
)

// SyncRequest carries the caller's optional bounds for one sync. From and To
// are calendar dates. LookbackDays overrides the mode's default lookback and
// cannot be combined with From.
type SyncRequest struct {
	From         *time.Time
	To           *time.Time
	LookbackDays int
	Mode         model.SyncMode
}

// ResolveWindow turns a request into a concrete window. To defaults to today
// (UTC) and From to To minus the lookback. It never touches the network.
func ResolveWindow(req SyncRequest, opts Options, today time.Time) (model.SyncWindow, error) {
	mode := req.Mode
	if mode == "" {
		mode = model.ModeStandard
	}
	if mode != model.ModeStandard && mode != model.ModeDeep {
		return model.SyncWindow{}, &custom_errors.ValidationError{Field: "mode", Message: "must be standard or deep"}
	}
	if req.LookbackDays < 0 {
		return model.SyncWindow{}, &custom_errors.ValidationError{Field: "days", Message: "must not be negative"}
	}
	if req.From != nil && req.LookbackDays > 0 {
		return model.SyncWindow{}, &custom_errors.ValidationError{Field: "days", Message: "cannot be combined with from"}
	}

	end := model.DateOf(today)
	if req.To != nil {
		end = model.DateOf(*req.To)
	}

	lookback := req.LookbackDays
	if lookback == 0 {
		lookback = opts.StandardLookbackDays
		if mode == model.ModeDeep {
			lookback = opts.DeepLookbackDays
		}
	}
	start := end.AddDate(0, 0, -lookback)
	if req.From != nil {
		start = model.DateOf(*req.From)
	}

	if start.After(end) {
		return model.SyncWindow{}, &custom_errors.ValidationError{Field: "from", Message: "start date must not be after end date"}
	}
	return model.SyncWindow{Start: start, End: end, Mode: mode}, nil
}
