// Package jwt issues and verifies the signed login tokens that seed a tab's
// session record. The token's exp claim becomes the record's expires_at.
package jwt
