// Package slots implements the call slot table: a growable arena of call
// slots addressed by (index, generation) handles. A stale handle never
// aliases a newer call in the same slot because reuse bumps the generation.
package slots
