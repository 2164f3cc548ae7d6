package config

// DefaultSenderDenylist returns exact sender addresses whose mail is
// always treated as automated outreach, regardless of content.
func DefaultSenderDenylist() []string {
	return []string{
		"sales@postman.com",
	}
}

// DefaultAutomatedSenderMarkers returns substrings that identify
// machine-operated sender addresses.
func DefaultAutomatedSenderMarkers() []string {
	return []string{
		"academy@postman.com",
		"help@postman.com",
		"noreply@",
		"no-reply@",
	}
}

// DefaultAutoReplyMarkers returns subject-line substrings that identify
// auto-reply and out-of-office mail.
func DefaultAutoReplyMarkers() []string {
	return []string{
		"automatic reply:",
		"out-of-office",
		"out of office",
		"ooo ",
		"paternity leave",
		"maternity leave",
	}
}

// DefaultTemplateMarkers returns the fixed vocabulary of sales/BDR
// boilerplate phrases. A subject+snippet containing any of these is
// treated as templated outreach.
func DefaultTemplateMarkers() []string {
	return []string{
		// Follow-up boilerplate
		"following up",
		"circling back",
		"resurfacing",
		"touching base",
		"checking in",
		"reaching out",
		"quick follow-up",
		"just checking",
		"wanted to circle back",
		"hope this finds you well",

		// Sales/BDR outreach patterns
		"quick chat",
		"15 minutes",
		"quick question",
		"calendar",
		"schedule time",
		"appropriate person",
		"intro call",
		"connect you with",
		"demo",
		"case study",
		"pilot",
		"free trial",
		"webinar",
		"whitepaper",
		"any interest",
		"worth a chat",
		"following up on my previous",
		"bumping this",
		"any thoughts",
		"quick sync",
		"hop on a call",
		"brief call",
		"quick call",
		"short call",
		"find time",
		"available this week",
		"available next week",
		"few minutes to chat",

		// Reminder patterns
		"per my last note",
		"per my last email",
		"as mentioned previously",
		"quick reminder",

		// Auto-reply and out-of-office synonyms
		"automatic reply",
		"out of office",
		"out-of-office",
		"ooo",
		"will be out",
		"out of the office",
		"returning on",
		"limited access to email",
		"urgent matters",
	}
}
