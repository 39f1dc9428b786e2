package imap

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message/mail"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// Criteria maps an abstract query onto IMAP search criteria.
func Criteria(q provider.Query) (*imap.SearchCriteria, error) {
	criteria := imap.NewSearchCriteria()
	switch q.Op {
	case provider.SearchBySubject:
		criteria.Header.Add("Subject", q.Value)
	case provider.SearchBySender:
		criteria.Header.Add("From", q.Value)
	case provider.SearchByContent:
		criteria.Text = []string{q.Value}
	case provider.ListUnread:
		criteria.WithoutFlags = []string{imap.SeenFlag}
	case provider.ListImportant:
		criteria.WithFlags = []string{imap.FlaggedFlag}
	default:
		return nil, fmt.Errorf("%s is not a search operation", q.Op)
	}
	return criteria, nil
}

// Search returns envelope summaries of the most recent matches, newest
// first. Summaries carry no snippet.
func (c *Client) Search(ctx context.Context, q provider.Query) ([]provider.EmailSummary, error) {
	criteria, err := Criteria(q)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.selectMailbox(ctx)
	if err != nil {
		return nil, err
	}

	uids, err := b.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search emails: %w", err)
	}
	if len(uids) == 0 {
		return []provider.EmailSummary{}, nil
	}

	// UIDs ascend with arrival, keep the tail.
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	if q.MaxResults > 0 && len(uids) > q.MaxResults {
		uids = uids[len(uids)-q.MaxResults:]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- b.UidFetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid}, messages)
	}()

	summaries := []provider.EmailSummary{}
	order := []uint32{}
	for msg := range messages {
		if s := summarize(msg); s != nil {
			summaries = append(summaries, *s)
			order = append(order, msg.Uid)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	sort.Sort(byUIDDesc{summaries, order})
	return summaries, nil
}

type byUIDDesc struct {
	s    []provider.EmailSummary
	uids []uint32
}

func (b byUIDDesc) Len() int           { return len(b.s) }
func (b byUIDDesc) Less(i, j int) bool { return b.uids[i] > b.uids[j] }
func (b byUIDDesc) Swap(i, j int) {
	b.s[i], b.s[j] = b.s[j], b.s[i]
	b.uids[i], b.uids[j] = b.uids[j], b.uids[i]
}

// summarize maps an envelope onto a summary. Messages without an envelope
// are skipped.
func summarize(msg *imap.Message) *provider.EmailSummary {
	if msg == nil || msg.Envelope == nil {
		return nil
	}
	env := msg.Envelope
	s := &provider.EmailSummary{
		ID:        strconv.FormatUint(uint64(msg.Uid), 10),
		Subject:   env.Subject,
		To:        joinAddresses(env.To),
		Cc:        joinAddresses(env.Cc),
		MessageID: env.MessageId,
	}
	if len(env.From) > 0 {
		s.From = formatAddress(env.From[0])
	}
	if !env.Date.IsZero() {
		s.Date = env.Date.Format(time.RFC1123Z)
	}
	return s
}

func joinAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a != nil {
			parts = append(parts, formatAddress(a))
		}
	}
	return strings.Join(parts, ", ")
}

// formatAddress formats an IMAP address as an RFC 5322 address. Display
// names are quoted or encoded so the result parses back as one address.
func formatAddress(addr *imap.Address) string {
	email := addr.MailboxName + "@" + addr.HostName
	if addr.PersonalName == "" {
		return email
	}
	return (&mail.Address{Name: addr.PersonalName, Address: email}).String()
}
