package ident

// RemoteId is a provider:sub_id identifier. Whether it is canonical or
// reference-only, and whether its sub_id is well-formed, is determined
// by the provider registry (internal/provider), not by this package.
type RemoteId struct {
	Provider string
	SubID    string
}

// NewRemoteId performs only the syntactic validation spec.md §4.2
// assigns to the identifier model: both halves non-empty. Acceptance
// of the provider and sub_id themselves is the registry's job.
func NewRemoteId(provider, subID string) (RemoteId, error) {
	if provider == "" {
		return RemoteId{}, parseErr(ErrEmptyProvider, provider+":"+subID)
	}
	if subID == "" {
		return RemoteId{}, parseErr(ErrEmptySubID, provider+":"+subID)
	}
	return RemoteId{Provider: provider, SubID: subID}, nil
}

// Name is the identifier-table key for this remote id: "provider:sub_id".
func (r RemoteId) Name() string { return r.Provider + ":" + r.SubID }

func (r RemoteId) String() string { return r.Name() }

// WithSubID returns a copy of r with SubID replaced, used when a
// provider's validator normalizes the sub_id (spec.md §4.3).
func (r RemoteId) WithSubID(subID string) RemoteId {
	return RemoteId{Provider: r.Provider, SubID: subID}
}

// Equal reports whether two RemoteIds name the same identifier.
func (r RemoteId) Equal(o RemoteId) bool {
	return r.Provider == o.Provider && r.SubID == o.SubID
}
