package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a user's active login JTI.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// TestHistoryKey returns the cache key for a user's locally cached result history.
func (r *CacheKeyStruct) TestHistoryKey(userID string) string {
	return fmt.Sprintf("user:%s:test_history", userID)
}

var CacheKey = NewCacheKeyStruct()
