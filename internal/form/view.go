package form

// View is the set of regions the controller drives. The controller never calls
// a View concurrently with itself, but views read by other goroutines must do
// their own locking.
type View interface {
	SetLoading(visible bool)
	SetResultsVisible(visible bool)
	SetSubmitEnabled(enabled bool)

	// RenderConditions and RenderSteps replace the list contents, one item per
	// string, in order and verbatim.
	RenderConditions(items []string)
	RenderSteps(items []string)
	// RenderDisclaimer receives markup; views must sanitize before display.
	RenderDisclaimer(markup string)
	// RenderReasoning receives plain text; views must escape it.
	RenderReasoning(text string)

	ShowMessage(msg TransientMessage)
	// FadeMessage and RemoveMessage refer to a message by id; a view ignores
	// ids that are no longer displayed.
	FadeMessage(id string)
	RemoveMessage(id string)
}
