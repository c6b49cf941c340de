package driven

import "context"

// TranscriptSource provides plain UTF-8 transcript text produced upstream
// by the transcription engine.
type TranscriptSource interface {
	// Read returns the transcript text for a source ID.
	// Returns domain.ErrNotFound if the transcript does not exist.
	Read(ctx context.Context, sourceID string) (string, error)

	// List returns the IDs of all available transcripts.
	List(ctx context.Context) ([]string, error)
}

// TranscriptWatcher notifies about transcripts that appear or change.
type TranscriptWatcher interface {
	// Watch emits source IDs until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context) (<-chan string, error)
}
