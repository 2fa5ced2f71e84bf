package tui

// storeChangedMsg coalesces "one or more events were applied" signals from
// the gateway dispatch loop.
type storeChangedMsg struct{}

type pollTickMsg struct{}

// statsFetchedMsg fires when any resource fetch settles; the views re-read
// resource snapshots on the next render.
type statsFetchedMsg struct{}

type errMsg struct {
	err error
}

func (e errMsg) Error() string { return e.err.Error() }

type notifyMsg struct {
	text string
}

type clearNotificationMsg struct{}

type decisionSentMsg struct {
	requestID string
	approved  bool
}
