package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/autobib/autobib/internal/ident"
)

// jfmIDRe matches a legacy Jahrbuch über die Fortschritte der
// Mathematik identifier, e.g. "46.0262.01", grounded on src/jfm.rs.
var jfmIDRe = regexp.MustCompile(`^\d{2}\.\d{4}\.\d{2}$`)

func jfmValidate(subID string) ValidateOutcome {
	if jfmIDRe.MatchString(subID) {
		return ValidateOutcome{Kind: Valid}
	}
	return ValidateOutcome{Kind: Invalid}
}

// jfmRefer looks up the zbMATH document that reissued a legacy JFM
// identifier and returns it as the next hop in the reference chain.
// JFM entries were absorbed into zbMATH the same way Zbl entries were
// (src/jfm.rs), so this mirrors zblRefer against the same search API.
func jfmRefer(ctx context.Context, subID string, f Fetcher) (*ident.RemoteId, error) {
	url := fmt.Sprintf("https://api.zbmath.org/v1/document/_search?search_string=an%%3AJFM+%s", subID)
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
