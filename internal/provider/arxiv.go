package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"

	"github.com/autobib/autobib/internal/codec"
)

// arxivIDRe matches the modern arXiv identifier scheme (YYMM.NNNNN,
// optionally versioned) as well as the legacy archive/number scheme
// (e.g. "math.GT/0309136"), grounded on src/arxiv.rs.
var arxivIDRe = regexp.MustCompile(`^(\d{4}\.\d{4,5}(v\d+)?|[a-z-]+(\.[A-Z]{2})?/\d{7})$`)

func arxivValidate(subID string) ValidateOutcome {
	if arxivIDRe.MatchString(subID) {
		return ValidateOutcome{Kind: Valid}
	}
	return ValidateOutcome{Kind: Invalid}
}

type arxivAtomFeed struct {
	Entries []arxivAtomEntry `xml:"entry"`
}

type arxivAtomEntry struct {
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

func arxivResolve(ctx context.Context, subID string, f Fetcher) (*codec.EntryData, error) {
	url := fmt.Sprintf("https://export.arxiv.org/api/query?id_list=%s", subID)
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, &Error{Kind: ErrUnexpectedStatus, Status: resp.StatusCode}
	}

	var feed arxivAtomFeed
	if err := xml.Unmarshal(resp.Body, &feed); err != nil {
		return nil, &Error{Kind: ErrFormat, Cause: err}
	}
	if len(feed.Entries) == 0 {
		return nil, nil // confirmed miss
	}

	entry := feed.Entries[0]
	e, err := codec.New("misc")
	if err != nil {
		return nil, &Error{Kind: ErrUnexpected, Cause: err}
	}
	if entry.Title != "" {
		if err := e.CheckAndInsert("title", entry.Title); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if len(entry.Authors) > 0 {
		authors := entry.Authors[0].Name
		for _, a := range entry.Authors[1:] {
			authors += " and " + a.Name
		}
		if err := e.CheckAndInsert("author", authors); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if len(entry.Published) >= 4 {
		if err := e.CheckAndInsert("year", entry.Published[:4]); err != nil {
			return nil, &Error{Kind: ErrFormat, Cause: err}
		}
	}
	if err := e.CheckAndInsert("eprint", subID); err != nil {
		return nil, &Error{Kind: ErrFormat, Cause: err}
	}
	return e, nil
}
