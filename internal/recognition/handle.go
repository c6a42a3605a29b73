package recognition

// LoadState is the observable state of a model Handle.
type LoadState int

const (
	Pending LoadState = iota
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle tracks an in-flight model load. It is resolved exactly once from
// the owner's event loop and is not safe for concurrent use.
type Handle struct {
	ref   string
	state LoadState
	model Classifier
	err   error
}

// NewHandle returns a pending handle for ref.
func NewHandle(ref string) *Handle {
	return &Handle{ref: ref}
}

func (h *Handle) Ref() string      { return h.ref }
func (h *Handle) State() LoadState { return h.state }
func (h *Handle) Err() error       { return h.err }

func (h *Handle) Model() (Classifier, bool) {
	return h.model, h.state == Loaded
}

// Resolve settles the handle. A nil model with a nil error counts as a
// failure. It returns false if the handle was already settled.
func (h *Handle) Resolve(model Classifier, err error) bool {
	if h.state != Pending {
		return false
	}
	if err == nil && model == nil {
		err = &ModelLoadError{URI: h.ref, Kind: KindParse, Err: errNoModel}
	}
	if err != nil {
		h.state, h.err = Failed, err
		return true
	}
	h.state, h.model = Loaded, model
	return true
}
