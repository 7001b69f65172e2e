package view

import "github.com/miniuni/miniuni-web/internal/session"

// Outcome is what an action hands back to the handler.
type Outcome struct {
	// Flash is the banner to show, nil when there is none.
	Flash *session.Flash
	// Invalid means validation failed and no request was sent.
	Invalid bool
	// Cancelled means the user declined a confirmation.
	Cancelled bool
	// Discarded means the view's lifetime ended before the result arrived.
	Discarded bool
	Err       error
}

func success(text string) Outcome {
	return Outcome{Flash: &session.Flash{Kind: session.FlashSuccess, Text: text}}
}

func failure(text string, err error) Outcome {
	return Outcome{Flash: &session.Flash{Kind: session.FlashError, Text: text}, Err: err}
}

func discarded(err error) Outcome {
	return Outcome{Discarded: true, Err: err}
}
