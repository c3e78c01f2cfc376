package core

import "github.com/google/uuid"

/**
 * @brief Generates a unique identifier for a resource. Identifiers are
 * opaque strings; the engine never derives meaning from their contents.
 */
func IdentifierAcquireNewID() string {
	return uuid.New().String()
}
