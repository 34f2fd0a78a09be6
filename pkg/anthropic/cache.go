package anthropic

// BuildCachedSystemBlocks returns a single system block marked as a cache
// breakpoint. Every advice call of one request shares the same profile
// prompt, so the first call writes the cache and the rest read it.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text:         text,
			CacheControl: &CacheControl{},
		},
	}
}
