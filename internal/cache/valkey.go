package cache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Valkey shares cached responses between instances through a
// Valkey-compatible server.
type Valkey struct {
	client valkey.Client
	prefix string
}

// NewValkey wraps client. Every key is stored under prefix.
func NewValkey(client valkey.Client, prefix string) *Valkey {
	if prefix == "" {
		prefix = "weather:response"
	}
	return &Valkey{client: client, prefix: prefix}
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := v.client.Do(ctx, v.client.B().Get().Key(v.entryKey(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return body, true, nil
}

func (v *Valkey) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	builder := v.client.B().Set().Key(v.entryKey(key)).Value(valkey.BinaryString(value))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return v.client.Do(ctx, cmd).Error()
}

// Clear deletes every key under the prefix.
func (v *Valkey) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		entry, err := v.client.Do(ctx, v.client.B().Scan().Cursor(cursor).Match(v.prefix+":*").Count(100).Build()).AsScanEntry()
		if err != nil {
			return err
		}
		if len(entry.Elements) > 0 {
			if err := v.client.Do(ctx, v.client.B().Del().Key(entry.Elements...).Build()).Error(); err != nil {
				return err
			}
		}
		if entry.Cursor == 0 {
			return nil
		}
		cursor = entry.Cursor
	}
}

func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}

func (v *Valkey) entryKey(key string) string {
	return v.prefix + ":" + key
}
