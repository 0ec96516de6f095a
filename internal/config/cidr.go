package config

import (
	"encoding/binary"
	"fmt"
	"net"
)

// SubnetPlan is one planned subnet: a tier instantiated in one zone.
type SubnetPlan struct {
	Tier      string
	ZoneIndex int
	CIDR      string
}

// PlanSubnets carves one subnet per (tier, zone) pair out of the VPC
// block. Numbering is deterministic: tiers in declaration order, zones
// ascending within each tier, so re-planning the same spec always yields
// the same addresses.
func (n NetworkSpec) PlanSubnets() ([]SubnetPlan, error) {
	_, vpc, err := net.ParseCIDR(n.VPCCIDR)
	if err != nil {
		return nil, fmt.Errorf("invalid vpc_cidr: %w", err)
	}
	maskSize, _ := vpc.Mask.Size()
	newBits := n.SubnetPrefix - maskSize
	if newBits <= 0 {
		return nil, fmt.Errorf("subnet_prefix /%d does not fit inside %s", n.SubnetPrefix, n.VPCCIDR)
	}

	plans := make([]SubnetPlan, 0, len(Tiers)*n.ZoneCount)
	for ti, tier := range Tiers {
		for z := 0; z < n.ZoneCount; z++ {
			cidr, err := CIDRSubnet(n.VPCCIDR, newBits, ti*n.ZoneCount+z)
			if err != nil {
				return nil, fmt.Errorf("planning %s subnet in zone %d: %w", tier, z, err)
			}
			plans = append(plans, SubnetPlan{Tier: tier, ZoneIndex: z, CIDR: cidr})
		}
	}
	return plans, nil
}

// CIDRSubnet calculates a subnet address given a network prefix, a
// netmask size increase, and a zero-based subnet number. Equivalent to
// Terraform's cidrsubnet. IPv4 only.
func CIDRSubnet(prefix string, newbits, netnum int) (string, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	ip4 := network.IP.To4()
	if ip4 == nil {
		return "", fmt.Errorf("only IPv4 prefixes are supported: %s", prefix)
	}

	maskSize, totalBits := network.Mask.Size()
	newMaskSize := maskSize + newbits
	if newMaskSize > totalBits {
		return "", fmt.Errorf("prefix extension of %d bits is too large for %s", newbits, prefix)
	}
	if netnum < 0 || netnum >= 1<<newbits {
		return "", fmt.Errorf("subnet number %d out of range for %d extra bits", netnum, newbits)
	}

	base := uint64(binary.BigEndian.Uint32(ip4))
	base += uint64(netnum) * (1 << (totalBits - newMaskSize))

	out := make(net.IP, 4)
	binary.BigEndian.PutUint32(out, uint32(base)) // #nosec G115 -- bounded by the range checks above
	return fmt.Sprintf("%s/%d", out, newMaskSize), nil
}
