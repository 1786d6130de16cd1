// Package provider defines the collaborator boundary for the menu
// pipeline: the Processor interface implemented by external AI engines
// (OCR, translation, description, image generation), a stage registry
// with availability flags, and a single retry-with-backoff decorator
// applied uniformly at the call boundary.
package provider
