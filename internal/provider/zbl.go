package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/autobib/autobib/internal/ident"
)

// zblIDRe matches a legacy Zentralblatt MATH identifier, e.g.
// "0001.00102", grounded on src/zbl.rs.
var zblIDRe = regexp.MustCompile(`^\d{4}\.\d{5}$`)

func zblValidate(subID string) ValidateOutcome {
	if zblIDRe.MatchString(subID) {
		return ValidateOutcome{Kind: Valid}
	}
	return ValidateOutcome{Kind: Invalid}
}

type zbmathSearchResult struct {
	Results []struct {
		ID string `json:"zbmath_id"`
	} `json:"result"`
}

// zblRefer looks up the zbMATH document that absorbed a legacy Zbl
// identifier and returns it as the next hop in the reference chain
// (spec.md §4.3's reference-provider contract).
func zblRefer(ctx context.Context, subID string, f Fetcher) (*ident.RemoteId, error) {
	url := fmt.Sprintf("https://api.zbmath.org/v1/document/_search?search_string=an%%3A%s", subID)
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == 404 {
		return nil, nil
	}
	if resp.StatusCode != 200 {
		return nil, &Error{Kind: ErrUnexpectedStatus, Status: resp.StatusCode}
	}

	var result zbmathSearchResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, &Error{Kind: ErrFormat, Cause: err}
	}
	if len(result.Results) == 0 || result.Results[0].ID == "" {
		return nil, nil
	}

	target, err := ident.NewRemoteId("zbmath", zbmathFormatSubID(result.Results[0].ID))
	if err != nil {
		return nil, &Error{Kind: ErrInvalidIDFromProvider, Cause: err}
	}
	return &target, nil
}
