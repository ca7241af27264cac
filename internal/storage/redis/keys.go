package redis

import "fmt"

// Key prefix for all userdata link data
const keyPrefix = "userdata"

// linkKey returns the Redis key for a Link
func linkKey(gcid string) string {
	return fmt.Sprintf("%s:link:%s", keyPrefix, gcid)
}

// dcidIndexKey returns the Redis key for the dcid -> gcid index
func dcidIndexKey(dcid string) string {
	return fmt.Sprintf("%s:idx:dcid:%s", keyPrefix, dcid)
}
