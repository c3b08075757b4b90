package media

import "time"

// Kind distinguishes the two media forms a post can embed
type Kind int

const (
	// KindImage is a full-size image fetched in one request
	KindImage Kind = iota
	// KindPlaylist is an HLS manifest that may later be remuxed
	KindPlaylist
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// Task is a single download unit: one source URL and its derived
// target path. Derivation is deterministic, so repeated runs produce
// the same path for the same source and the on-disk file doubles as
// the deduplication ledger.
type Task struct {
	// Dir is the target directory ({account}_{mode})
	Dir string
	// Filename is the derived file name within Dir
	Filename string
	// URL is the source to fetch
	URL string
	// Kind is the media form
	Kind Kind
}

// Status describes how a task ended
type Status int

const (
	// StatusAlreadyPresent means the target file existed; no network I/O happened
	StatusAlreadyPresent Status = iota
	// StatusDownloaded means the file was fetched and written this run
	StatusDownloaded
	// StatusFailed means the fetch or write failed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAlreadyPresent:
		return "already_present"
	case StatusDownloaded:
		return "downloaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of running one task
type Outcome struct {
	Task     Task
	Status   Status
	Err      error
	Size     int64
	Duration time.Duration
}

// PlaylistRecord points at a playlist manifest downloaded this run,
// together with the base URL its entries resolve against. Records are
// run-scoped; they are never persisted.
type PlaylistRecord struct {
	// Path is the local manifest filepath
	Path string
	// BaseURL is the manifest URL with its trailing filename stripped
	BaseURL string
}

// Stats aggregates the outcomes of one scheduler run
type Stats struct {
	Total          int
	AlreadyPresent int
	Downloaded     int
	Failed         int
}

// Add records one outcome
func (s *Stats) Add(o Outcome) {
	s.Total++
	switch o.Status {
	case StatusAlreadyPresent:
		s.AlreadyPresent++
	case StatusDownloaded:
		s.Downloaded++
	case StatusFailed:
		s.Failed++
	}
}

// Have is the count reported as downloaded: files present on disk
// after the run, whether or not this run fetched them.
func (s *Stats) Have() int {
	return s.AlreadyPresent + s.Downloaded
}
