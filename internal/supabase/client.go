package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"

	"elite-decor-web/internal/config"
)

// Client bundles the Supabase services the web front uses: GoTrue for
// identity and Storage for uploaded images.
type Client struct {
	Supabase *supabase.Client
	Auth     *GoTrueProvider
	Images   *StorageClient
	Tokens   *TokenVerifier
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Auth:     NewGoTrueProvider(client.Auth),
		Images:   NewStorageClient(cfg.SupabaseURL, cfg.ImageHostKey(), cfg.SupabaseStorageBucket),
		Tokens:   NewTokenVerifier(cfg.SupabaseJWTSecret),
	}, nil
}
