// ABOUTME: Built-in default tool catalog used when no catalog file is configured
// ABOUTME: Covers the butler's stock email, calendar, contact, and notes tools

package catalog

// Default returns the built-in tool catalog.
// The set mirrors the stock assistant tools; deployments override it with a
// catalog file when they register additional tools.
func Default() *Catalog {
	c, err := New([]Tool{
		{Name: "get_emails", Tier: TierRead},
		{Name: "get_calendar", Tier: TierRead},
		{Name: "get_contacts", Tier: TierRead},
		{Name: "search_notes", Tier: TierRead},
		{Name: "send_email", Tier: TierWrite},
		{Name: "create_event", Tier: TierWrite},
		{Name: "update_event", Tier: TierWrite},
		{Name: "create_note", Tier: TierWrite},
		{Name: "add_contact", Tier: TierWrite},
		{Name: "delete_event", Tier: TierDestructive,
			Warning: "This permanently deletes a calendar event and notifies attendees of the cancellation."},
		{Name: "delete_contact", Tier: TierDestructive,
			Warning: "This permanently deletes a contact and all associated notes. This cannot be undone."},
		{Name: "delete_note", Tier: TierDestructive,
			Warning: "This permanently deletes a note. This cannot be undone."},
	})
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}
