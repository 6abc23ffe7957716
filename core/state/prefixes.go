package state

import "assembly/crypto"

var (
	accountOwnerPrefix      = []byte("account/owner/")
	tokenMintPrefix         = []byte("token/mint/")
	tokenAccountPrefix      = []byte("token/account/")
	distributorPrefix       = []byte("distribution/distributor/")
	distributorListKey      = []byte("distribution/distributors")
	grantPrefix             = []byte("distribution/grant/")
	distributorGrantsPrefix = []byte("distribution/grants/")
)

func addressKey(prefix []byte, addr crypto.Address) []byte {
	buf := make([]byte, len(prefix)+len(addr))
	copy(buf, prefix)
	copy(buf[len(prefix):], addr[:])
	return buf
}

// AccountOwnerKey is the key of the owner program registered for addr.
func AccountOwnerKey(addr crypto.Address) []byte { return addressKey(accountOwnerPrefix, addr) }

// TokenMintKey is the key of the mint record at addr.
func TokenMintKey(addr crypto.Address) []byte { return addressKey(tokenMintPrefix, addr) }

// TokenAccountKey is the key of the token account record at addr.
func TokenAccountKey(addr crypto.Address) []byte { return addressKey(tokenAccountPrefix, addr) }

// DistributorKey is the key of the distributor record at addr.
func DistributorKey(addr crypto.Address) []byte { return addressKey(distributorPrefix, addr) }

// GrantKey is the key of the grant record at addr.
func GrantKey(addr crypto.Address) []byte { return addressKey(grantPrefix, addr) }

// DistributorGrantsKey is the key of the grant index of distributor.
func DistributorGrantsKey(distributor crypto.Address) []byte {
	return addressKey(distributorGrantsPrefix, distributor)
}
