package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TabSessionKey returns the hash key holding a tab's token, role and userId.
func (r *CacheKeyStruct) TabSessionKey(tabID string) string {
	return fmt.Sprintf("tab:%s:session", tabID)
}

// TabFlashKey returns the key for a tab's transient banner.
func (r *CacheKeyStruct) TabFlashKey(tabID string) string {
	return fmt.Sprintf("tab:%s:flash", tabID)
}

// Session hash fields, named after the browser storage keys.
const (
	SessionFieldToken  = "token"
	SessionFieldRole   = "role"
	SessionFieldUserID = "userId"
)

var CacheKey = NewCacheKeyStruct()
