package qstash

import "context"

// SigningKeys are the secrets QStash signs webhook deliveries with. Rotation
// moves the next key into place, so receivers should accept both.
type SigningKeys struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

// GetSigningKeys fetches the current and next signing key.
func (c *Client) GetSigningKeys(ctx context.Context) (*SigningKeys, error) {
	var keys SigningKeys
	if err := c.transport.get(ctx, "/v2/keys", nil, &keys); err != nil {
		return nil, err
	}
	return &keys, nil
}

// RotateSigningKeys retires the current key, promotes the next one, and
// returns the new pair. Deliveries signed with the retired key stop
// verifying, so rotate only after receivers know the next key.
func (c *Client) RotateSigningKeys(ctx context.Context) (*SigningKeys, error) {
	var keys SigningKeys
	if err := c.transport.post(ctx, "/v2/keys/rotate", nil, nil, &keys); err != nil {
		return nil, err
	}
	return &keys, nil
}
