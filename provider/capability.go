package provider

// matrix is the compatibility contract promised to callers. Every
// (operation, provider) pair has an explicit entry and the table is never
// mutated.
var matrix = [opCount][kindCount]bool{
	CreateDraft:     {RestMail: true, StreamMailbox: false, OutboundRelay: false},
	Send:            {RestMail: true, StreamMailbox: false, OutboundRelay: true},
	Reply:           {RestMail: true, StreamMailbox: false, OutboundRelay: true},
	SearchBySubject: {RestMail: true, StreamMailbox: true, OutboundRelay: false},
	SearchBySender:  {RestMail: true, StreamMailbox: true, OutboundRelay: false},
	SearchByContent: {RestMail: true, StreamMailbox: true, OutboundRelay: false},
	ListUnread:      {RestMail: true, StreamMailbox: true, OutboundRelay: false},
	ListImportant:   {RestMail: true, StreamMailbox: true, OutboundRelay: false},
	MarkRead:        {RestMail: true, StreamMailbox: true, OutboundRelay: false},
	MarkImportant:   {RestMail: true, StreamMailbox: true, OutboundRelay: false},
	FetchContent:    {RestMail: true, StreamMailbox: true, OutboundRelay: false},
}

// Supports reports whether the provider can perform the operation. Values
// outside the enumerations are never supported.
func Supports(op Operation, k Kind) bool {
	if op < 0 || op >= opCount || k < 0 || k >= kindCount {
		return false
	}
	return matrix[op][k]
}

// SupportedBy lists the providers that can perform op.
func SupportedBy(op Operation) []Kind {
	var kinds []Kind
	for _, k := range Kinds() {
		if Supports(op, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ReadPartner returns the provider that serves reads on behalf of k when k
// cannot fetch messages itself. The outbound relay has no mailbox, so replies
// sent through it read the original from the mailbox backend.
func ReadPartner(k Kind) Kind {
	if Supports(FetchContent, k) {
		return k
	}
	if k == OutboundRelay {
		return StreamMailbox
	}
	return k
}
