package apiclient

import (
	"context"
	"net/url"

	"github.com/marmos91/dittotape/pkg/catalogue"
)

// ListMediaTypes returns the media types of the server catalogue.
func (c *Client) ListMediaTypes(ctx context.Context) ([]*catalogue.MediaType, error) {
	var mts []*catalogue.MediaType
	if err := c.get(ctx, "/api/v1/media-types", &mts); err != nil {
		return nil, err
	}
	return mts, nil
}

// GetMediaType returns one media type.
func (c *Client) GetMediaType(ctx context.Context, name string) (*catalogue.MediaType, error) {
	var mt catalogue.MediaType
	if err := c.get(ctx, "/api/v1/media-types/"+url.PathEscape(name), &mt); err != nil {
		return nil, err
	}
	return &mt, nil
}

// ListTapes returns the tapes of the server catalogue.
func (c *Client) ListTapes(ctx context.Context) ([]*catalogue.Tape, error) {
	var tapes []*catalogue.Tape
	if err := c.get(ctx, "/api/v1/tapes", &tapes); err != nil {
		return nil, err
	}
	return tapes, nil
}

// GetTape returns one tape.
func (c *Client) GetTape(ctx context.Context, vid string) (*catalogue.Tape, error) {
	var tape catalogue.Tape
	if err := c.get(ctx, "/api/v1/tapes/"+url.PathEscape(vid), &tape); err != nil {
		return nil, err
	}
	return &tape, nil
}
