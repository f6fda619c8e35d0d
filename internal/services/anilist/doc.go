// Package anilist is a minimal GraphQL client for the AniList anime
// catalogue: title search, prequel/sequel relation traversal, and per-season
// episode lists.
package anilist
