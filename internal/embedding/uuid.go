// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package embedding

import "github.com/google/uuid"

// agnusNamespace scopes the deterministic object ids Weaviate requires
// so re-indexing the same symbol always produces the same object id,
// turning Upsert into a true upsert instead of an accumulating insert.
var agnusNamespace = uuid.MustParse("8f14e45f-ceea-467e-bbba-1a1a2a2a4a4a")

func deterministicUUID(key string) string {
	return uuid.NewSHA1(agnusNamespace, []byte(key)).String()
}
