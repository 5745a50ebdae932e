package sharetoken

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// permitTypeHash is keccak256("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)").
var permitTypeHash = crypto.Keccak256Hash([]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"))

// eip712DomainTypeHash is keccak256("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)").
var eip712DomainTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

func pad32Address(a common.Address) [32]byte {
	var out [32]byte
	copy(out[12:], a.Bytes())
	return out
}

func computeDomainSeparator(name, version string, chainID *uint256.Int, verifyingContract common.Address) common.Hash {
	nameHash := crypto.Keccak256Hash([]byte(name))
	versionHash := crypto.Keccak256Hash([]byte(version))
	chainIDBytes := chainID.Bytes32()
	addrBytes := pad32Address(verifyingContract)

	buf := make([]byte, 0, 32*5)
	buf = append(buf, eip712DomainTypeHash.Bytes()...)
	buf = append(buf, nameHash.Bytes()...)
	buf = append(buf, versionHash.Bytes()...)
	buf = append(buf, chainIDBytes[:]...)
	buf = append(buf, addrBytes[:]...)
	return crypto.Keccak256Hash(buf)
}

func (t *Token) structHash(owner, spender common.Address, value *uint256.Int, nonce *uint256.Int, deadline uint64) common.Hash {
	ownerBytes := pad32Address(owner)
	spenderBytes := pad32Address(spender)
	valueBytes := value.Bytes32()
	nonceBytes := nonce.Bytes32()
	deadlineBytes := uint256.NewInt(deadline).Bytes32()

	buf := make([]byte, 0, 32*6)
	buf = append(buf, permitTypeHash.Bytes()...)
	buf = append(buf, ownerBytes[:]...)
	buf = append(buf, spenderBytes[:]...)
	buf = append(buf, valueBytes[:]...)
	buf = append(buf, nonceBytes[:]...)
	buf = append(buf, deadlineBytes[:]...)
	return crypto.Keccak256Hash(buf)
}

// digest computes the final EIP-712 message hash for a permit over
// (owner, spender, value, nonce, deadline) against this token's domain
// separator.
func (t *Token) digest(owner, spender common.Address, value *uint256.Int, nonce *uint256.Int, deadline uint64) common.Hash {
	sh := t.structHash(owner, spender, value, nonce, deadline)

	buf := make([]byte, 0, 2+32+32)
	buf = append(buf, 0x19, 0x01)
	buf = append(buf, t.domainSeparator.Bytes()...)
	buf = append(buf, sh.Bytes()...)
	return crypto.Keccak256Hash(buf)
}

// DomainSeparator returns the domain-binding digest computed at
// construction.
func (t *Token) DomainSeparator() common.Hash {
	return t.domainSeparator
}

// Permit verifies a signed off-chain approval and, on success, commits
// the allowance exactly as Approve would. v follows the standard 27/28
// recovery-id convention.
func (t *Token) Permit(owner, spender common.Address, value *uint256.Int, deadline uint64, v uint8, r, s common.Hash) error {
	if deadline < t.now() {
		return ErrExpired
	}

	// Held for the whole check-and-increment: two concurrent Permit calls
	// carrying the same signature must serialize here, so the loser
	// verifies against an already-advanced nonce and fails rather than
	// replaying the first call's signature a second time.
	t.mu.Lock()

	nonce := uint256.NewInt(0)
	if n, ok := t.nonces[owner]; ok {
		nonce = n
	}
	nonceSnapshot := new(uint256.Int).Set(nonce)

	msg := t.digest(owner, spender, value, nonceSnapshot, deadline)

	sig := make([]byte, 65)
	copy(sig[0:32], r.Bytes())
	copy(sig[32:64], s.Bytes())
	if v >= 27 {
		sig[64] = v - 27
	} else {
		sig[64] = v
	}

	pub, err := crypto.SigToPub(msg.Bytes(), sig)
	if err != nil {
		t.mu.Unlock()
		return ErrInvalidSignature
	}
	recovered := crypto.PubkeyToAddress(*pub)
	if recovered == (common.Address{}) || recovered != owner {
		t.mu.Unlock()
		return ErrInvalidSignature
	}

	t.nonces[owner] = new(uint256.Int).AddUint64(nonceSnapshot, 1)
	if m, ok := t.allowances[owner]; ok {
		m[spender] = new(uint256.Int).Set(value)
	} else {
		t.allowances[owner] = map[common.Address]*uint256.Int{spender: new(uint256.Int).Set(value)}
	}
	t.mu.Unlock()

	t.events.EmitApproval(t.self, owner, spender, value)
	return nil
}
