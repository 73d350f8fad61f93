package provider

import (
	"context"
	"fmt"
	"regexp"

	"github.com/autobib/autobib/internal/codec"
)

// zbmathIDRe matches a zbMATH document identifier: a bare decimal
// number, optionally left-padded with zeros.
var zbmathIDRe = regexp.MustCompile(`^\d{1,8}$`)

func zbmathValidate(subID string) ValidateOutcome {
	if !zbmathIDRe.MatchString(subID) {
		return ValidateOutcome{Kind: Invalid}
	}
	normalized := zbmathFormatSubID(subID)
	if normalized != subID {
		return ValidateOutcome{Kind: Normalize, NormalizedSub: normalized}
	}
	return ValidateOutcome{Kind: Valid}
}

// zbmathFormatSubID canonicalizes a zbMATH id to its 8-digit
// zero-padded form, grounded on src/zbmath.rs's id normalization.
func zbmathFormatSubID(subID string) string {
	n := 0
	for _, r := range subID {
		n = n*10 + int(r-'0')
	}
	return fmt.Sprintf("%08d", n)
}

func zbmathResolve(ctx context.Context, subID string, f Fetcher) (*codec.EntryData, error) {
	url := fmt.Sprintf("https://zbmath.org/bibtex/%s.bib", subID)
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == 404 {
		return nil, nil // confirmed miss
	}
	if resp.StatusCode != 200 {
		return nil, &Error{Kind: ErrUnexpectedStatus, Status: resp.StatusCode}
	}

	fields := parseBibtexFields(string(resp.Body))
	if fields.EntryType == "" && fields.Title == "" {
		return nil, &Error{Kind: ErrFormat, Msg: "no recognizable bibtex fields in zbmath response"}
	}
	e, err := fields.toEntryData()
	if err != nil {
		return nil, &Error{Kind: ErrFormat, Cause: err}
	}
	if err := e.CheckAndInsert("zbmath", subID); err != nil {
		return nil, &Error{Kind: ErrFormat, Cause: err}
	}
	return e, nil
}
