// Package anilist fetches the anime catalog from the AniList GraphQL API.
// The client pages through the full catalog with a courtesy delay between
// requests and backs off when AniList signals rate limiting.
package anilist
