package backend

import "errors"

// Snapshots capture the state of a data structure at a moment in time for
// future reference.
//
// Snapshots are volatile, they do not survive the current process. They are
// created by calling `CreateSnapshot` on the data structure to be captured
// and released by calling the snapshot's `Release` method.
//
// Logically, each snapshot describes a range of Parts, where each part covers
// a chunk of the frozen state. Parts can be retrieved individually to
// facilitate streaming of snapshots, potentially from multiple sources. Each
// part has a Proof associated, capable of certifying its content, and the
// proofs of all parts aggregate into a single root proof certifying the
// snapshot as a whole.
type Snapshot interface {
	// GetRootProof retrieves the aggregated proof for this snapshot.
	GetRootProof() Proof
	// GetNumParts retrieves the number of parts in this snapshot.
	GetNumParts() int
	// GetProof retrieves the proof for a part, without loading the part.
	GetProof(partNumber int) (Proof, error)
	// GetPart retrieves a part of the snapshot.
	GetPart(partNumber int) (Part, error)

	// GetData provides a type-erased view on this snapshot to be used for
	// syncing data structures, potentially over the network.
	GetData() SnapshotData

	// Release destroys this snapshot, invalidating all derived objects.
	Release() error
}

// Part is a chunk of data of a data structure's snapshot.
type Part interface {
	// ToBytes serializes this part such that it can be transferred through IO.
	ToBytes() []byte
}

// Proof is a piece of information that can be used to certify the content of
// a Part or an entire snapshot.
type Proof interface {
	// Equal tests whether this proof is equal to the given proof.
	Equal(proof Proof) bool
	// ToBytes serializes this proof such that it can be transferred through IO.
	ToBytes() []byte
}

// SnapshotData is a type-erased view on a snapshot that is intended to be
// used for syncing data between data structure instances.
type SnapshotData interface {
	// GetMetaData retrieves snapshot specific metadata describing the content
	// and structure of the snapshot, e.g. its root proof and number of parts.
	// The format is data-structure specific.
	GetMetaData() ([]byte, error)
	// GetProofData retrieves a serialized form of the proof of a requested part.
	GetProofData(partNumber int) ([]byte, error)
	// GetPartData retrieves a serialized form of a requested part.
	GetPartData(partNumber int) ([]byte, error)
}

// SnapshotVerifier provides abstract means for verifying individual parts of
// a snapshot during synchronization.
type SnapshotVerifier interface {
	// VerifyRootProof verifies that the proofs of the parts provided by the
	// given SnapshotData are consistent with the snapshot's root proof, which
	// is returned for cross-referencing with other sources.
	VerifyRootProof(data SnapshotData) (Proof, error)
	// VerifyPart tests that the given proof is valid for the provided part.
	VerifyPart(number int, proof, part []byte) error
}

// Snapshotable is an interface to be implemented by data structures to
// support integration into the snapshotting infrastructure.
type Snapshotable interface {
	// GetProof returns the proof a snapshot would exhibit if it was created
	// for the current state of the data structure.
	GetProof() (Proof, error)
	// CreateSnapshot creates a snapshot of the current state of the data
	// structure. The snapshot should be shielded from subsequent modifications
	// and be accessible until released.
	CreateSnapshot() (Snapshot, error)
	// Restore restores the data structure to the given snapshot state. This
	// may invalidate any former snapshots created on the data structure.
	Restore(data SnapshotData) error
	// GetSnapshotVerifier produces a verifier for snapshot data accepted by
	// this Snapshotable data structure. This fails if the given metadata does
	// not describe a snapshot format compatible with this data structure.
	GetSnapshotVerifier(metadata []byte) (SnapshotVerifier, error)
}

// ErrSnapshotNotSupported is returned by implementations not supporting snapshots.
var ErrSnapshotNotSupported = errors.New("this implementation does not support snapshots")
