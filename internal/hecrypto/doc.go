// Package hecrypto holds the cryptographic collaborators of the pipeline:
// the symmetric stream cipher applied by the initiator, the homomorphic-side
// engine used for transciphering and final decryption, and the adapter that
// makes ciphertext objects interchangeable with plain byte frames.
//
// The pipeline treats every transform in here as a black box behind the
// Encryptor, Transcipherer and Decryptor interfaces. The concrete schemes
// are intentionally lightweight stand-ins built on ChaCha20; swapping in a
// real lattice-based library only means re-implementing those interfaces
// and the element import/export functions.
package hecrypto
