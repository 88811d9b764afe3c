package board

import "github.com/bwmarrin/discordgo"

// Channel publishes board messages to one Discord text channel.
type Channel struct {
	session   *discordgo.Session
	channelID string
}

// NewChannel creates a surface over an open Discord session.
func NewChannel(session *discordgo.Session, channelID string) *Channel {
	return &Channel{session: session, channelID: channelID}
}

// ID returns the Discord channel ID.
func (c *Channel) ID() string {
	return c.channelID
}

// Recent returns the IDs of up to limit most recent messages in the channel.
func (c *Channel) Recent(limit int) ([]string, error) {
	msgs, err := c.session.ChannelMessages(c.channelID, limit, "", "", "")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}

	return ids, nil
}

// Send publishes a new message and returns its ID.
func (c *Channel) Send(content string) (string, error) {
	msg, err := c.session.ChannelMessageSend(c.channelID, content)
	if err != nil {
		return "", err
	}

	return msg.ID, nil
}

// Fetch probes whether a message still exists in the channel.
func (c *Channel) Fetch(id string) error {
	_, err := c.session.ChannelMessage(c.channelID, id)
	return err
}

// Edit replaces the content of an existing message.
func (c *Channel) Edit(id, content string) error {
	_, err := c.session.ChannelMessageEdit(c.channelID, id, content)
	return err
}

// Delete removes a message from the channel.
func (c *Channel) Delete(id string) error {
	return c.session.ChannelMessageDelete(c.channelID, id)
}
