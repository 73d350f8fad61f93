package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/autobib/autobib/internal/codec"
)

// doiRe matches the DOI syntax (ISO 26324): a 10.NNNN prefix followed
// by an arbitrary non-whitespace suffix.
var doiRe = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

func doiValidate(subID string) ValidateOutcome {
	if doiRe.MatchString(subID) {
		return ValidateOutcome{Kind: Valid}
	}
	// doiRe accepts either letter case, so an uppercase DOI is already
	// returned Valid above, as given. Lowercasing does not change the
	// digits, dots or slash doiRe checks, so this branch does not turn a
	// rejected sub_id into a Normalize outcome.
	lower := strings.ToLower(subID)
	if lower != subID && doiRe.MatchString(lower) {
		return ValidateOutcome{Kind: Normalize, NormalizedSub: lower}
	}
	return ValidateOutcome{Kind: Invalid}
}

// crossrefWork is the subset of a Crossref "work" object this adapter
// consumes (https://api.crossref.org/works/{doi}).
type crossrefWork struct {
	Message struct {
		Type      string `json:"type"`
		Title     []string `json:"title"`
		Author    []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		ContainerTitle []string `json:"container-title"`
		Volume         string   `json:"volume"`
		Page           string   `json:"page"`
		Published      struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"published"`
		DOI string `json:"DOI"`
	} `json:"message"`
}

func doiResolve(ctx context.Context, subID string, f Fetcher) (*codec.EntryData, error) {
	url := fmt.Sprintf("https://api.crossref.org/works/%s", subID)
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

	var work crossrefWork
	if err := json.Unmarshal(resp.Body, &work); err != nil {
		return nil, &Error{Kind: ErrFormat, Cause: err}
	}

	entryType := "article"
	if work.Message.Type == "book" || work.Message.Type == "monograph" {
		entryType = "book"
	}
	e, err := codec.New(entryType)
	if err != nil {
		return nil, &Error{Kind: ErrUnexpected, Cause: err}
	}

	if len(work.Message.Title) > 0 && work.Message.Title[0] != "" {
		if err := e.CheckAndInsert("title", work.Message.Title[0]); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if len(work.Message.Author) > 0 {
		names := make([]string, 0, len(work.Message.Author))
		for _, a := range work.Message.Author {
			names = append(names, strings.TrimSpace(a.Given+" "+a.Family))
		}
		if err := e.CheckAndInsert("author", strings.Join(names, " and ")); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if len(work.Message.ContainerTitle) > 0 && work.Message.ContainerTitle[0] != "" {
		if err := e.CheckAndInsert("journal", work.Message.ContainerTitle[0]); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if work.Message.Volume != "" {
		if err := e.CheckAndInsert("volume", work.Message.Volume); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if work.Message.Page != "" {
		if err := e.CheckAndInsert("pages", work.Message.Page); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if len(work.Message.Published.DateParts) > 0 && len(work.Message.Published.DateParts[0]) > 0 {
		if err := e.CheckAndInsert("year", fmt.Sprintf("%d", work.Message.Published.DateParts[0][0])); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if err := e.CheckAndInsert("doi", subID); err != nil {
		return nil, &Error{Kind: ErrFormat, Cause: err}
	}
	return e, nil
}
