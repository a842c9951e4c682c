package merkle

import "testing"

func leafSet(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = []byte{byte(i), byte(i >> 8)}
	}
	return leaves
}

func TestRoundTripVariousSizes(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		leaves := leafSet(n)
		tree := BuildTree(PrefixSolanaValidatorDebt, leaves)
		root := tree.Root()
		for i := 0; i < n; i++ {
			proof, err := tree.ProofFor(uint32(i))
			if err != nil {
				t.Fatalf("n=%d i=%d: ProofFor: %v", n, i, err)
			}
			if err := Verify(PrefixSolanaValidatorDebt, leaves[i], proof, root); err != nil {
				t.Fatalf("n=%d i=%d: Verify: %v", n, i, err)
			}
		}
	}
}

func TestVerifyRejectsTamperedLeaf(t *testing.T) {
	leaves := leafSet(4)
	tree := BuildTree(PrefixRewardShare, leaves)
	root := tree.Root()
	proof, err := tree.ProofFor(1)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte{}, leaves[1]...)
	tampered[0] ^= 0xff
	if err := Verify(PrefixRewardShare, tampered, proof, root); err == nil {
		t.Fatal("expected verification failure for tampered leaf")
	}
}

func TestDomainSeparationPreventsCrossPrefixReplay(t *testing.T) {
	leaves := leafSet(4)
	debtTree := BuildTree(PrefixSolanaValidatorDebt, leaves)
	root := debtTree.Root()
	proof, err := debtTree.ProofFor(0)
	if err != nil {
		t.Fatal(err)
	}
	// Same leaf bytes and proof, wrong prefix: must not verify against the debt tree's root.
	if err := Verify(PrefixRewardShare, leaves[0], proof, root); err == nil {
		t.Fatal("expected verification failure across domain prefixes")
	}
}

func TestEmptyTreeRootIsZero(t *testing.T) {
	tree := BuildTree(PrefixSolanaValidatorDebt, nil)
	if tree.Root() != (Hash{}) {
		t.Fatal("empty tree should have zero root")
	}
}
