package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag identifies one revision of a document.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time) string {
	return fmt.Sprintf(`"%s-%d"`, id.Hex(), updatedAt.UnixNano())
}

// HashETag derives a strong validator from arbitrary parts, used for
// listings whose content is more than one document.
func HashETag(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
