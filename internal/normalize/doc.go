// Package normalize converts raw display titles into canonical comparison
// form: lowercased, accent-folded, stripped of symbols and filler words.
// Japanese script survives untouched so native titles stay comparable.
package normalize
