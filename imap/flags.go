package imap

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap"
)

// MarkRead adds \Seen. Adding a flag that is already set is a no-op on the
// server, so repeated calls succeed.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	return c.addFlag(ctx, messageID, imap.SeenFlag)
}

// MarkImportant adds \Flagged.
func (c *Client) MarkImportant(ctx context.Context, messageID string) error {
	return c.addFlag(ctx, messageID, imap.FlaggedFlag)
}

func (c *Client) addFlag(ctx context.Context, messageID, flag string) error {
	seqSet, err := parseUID(messageID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.selectMailbox(ctx)
	if err != nil {
		return err
	}

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := b.UidStore(seqSet, item, []interface{}{flag}, nil); err != nil {
		return fmt.Errorf("failed to mark email: %w", err)
	}
	return nil
}
