package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// packageHandlers wires packageRecord into go-repository-bun's generic
// Repository[T], exactly as the teacher's connectionHandlers/
// credentialHandlers do for their own record types. A package's 16-byte
// id (core.PackageID) is the same width as uuid.UUID, so the identity
// plumbing go-repository-bun expects lines up without a synthetic
// surrogate key.
func packageHandlers() repository.ModelHandlers[*packageRecord] {
	return repository.ModelHandlers[*packageRecord]{
		NewRecord: func() *packageRecord {
			return &packageRecord{}
		},
		GetID: func(record *packageRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *packageRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *packageRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
