package revdist

import "github.com/gagliardetto/solana-go"

// DiscriminatorPrepaidConnection identifies a PrepaidConnection account. This account type is
// not part of the byte-for-byte compatibility fixture (it predates this program's mainnet
// deployment history); its layout is original to this module, grounded in the access-grant
// pattern original_source uses for sentinel-gated resources.
var DiscriminatorPrepaidConnection = sha256First8("dz::account::prepaid_connection")

var seedPrepaidConnection = []byte("prepaid_connection")

// DerivePrepaidConnectionPDA derives the per-user prepaid-connection account address.
func DerivePrepaidConnectionPDA(programID solana.PublicKey, user solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedPrepaidConnection, user.Bytes()}, programID)
}

// PrepaidConnection gates one user's ability to call LoadPrepaidConnection. Access is granted
// or denied by the DZ ledger sentinel key recorded on ProgramConfig.
type PrepaidConnection struct {
	User      solana.PublicKey
	IsGranted bool
	BumpSeed  uint8
	_         [6]byte
}
