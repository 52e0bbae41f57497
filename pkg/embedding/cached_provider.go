package embedding

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedProvider memoizes embeddings by content hash. Its main job is making
// redelivered ingestion messages cheap: a replayed pipeline run hits the cache
// instead of the provider for every unchanged chunk.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *gocache.Cache
}

func NewCachedProvider(inner EmbeddingProvider, ttl time.Duration) EmbeddingProvider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedProvider{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func cacheKey(text, taskType string) string {
	return fmt.Sprintf("%s:%x", taskType, md5.Sum([]byte(text)))
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := cacheKey(text, taskType)
	if cached, found := p.cache.Get(key); found {
		return cached.([]float32), nil
	}

	vec, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(key, vec)
	return vec, nil
}

func (p *CachedProvider) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	// Collect only the cache misses into one provider batch.
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if cached, found := p.cache.Get(cacheKey(text, taskType)); found {
			vectors[i] = cached.([]float32)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	fresh, err := p.inner.GenerateBatch(ctx, missing, taskType)
	if err != nil {
		return nil, err
	}
	for j, vec := range fresh {
		i := missingIdx[j]
		vectors[i] = vec
		p.cache.SetDefault(cacheKey(texts[i], taskType), vec)
	}
	return vectors, nil
}
