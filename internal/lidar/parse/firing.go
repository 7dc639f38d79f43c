package parse

// FiringTimeTable holds nanosecond firing offsets indexed by [block][channel].
// Offsets are relative to the packet timestamp.
type FiringTimeTable [BlocksPerPacket][ChannelsPerBlock]uint32

// Lookup returns the offset for block and channel.
func (t *FiringTimeTable) Lookup(block, channel int) (int64, error) {
	if block < 0 || block >= BlocksPerPacket || channel < 0 || channel >= ChannelsPerBlock {
		return 0, &IndexError{Block: block, Channel: channel}
	}
	return int64(t[block][channel]), nil
}

// FiringOffsetNs returns the firing offset for one point of a Bpearl v4 data
// packet. The dual table is used for ReturnModeDual, the single table for every
// other mode, including ReturnModeUnknown.
func FiringOffsetNs(block, channel int, mode ReturnMode) (int64, error) {
	if mode.IsDual() {
		return firingOffsetsDual.Lookup(block, channel)
	}
	return firingOffsetsSingle.Lookup(block, channel)
}

// FiringTables returns copies of the single- and dual-return tables.
func FiringTables() (single, dual FiringTimeTable) {
	return firingOffsetsSingle, firingOffsetsDual
}

// firingOffsetsSingle holds per-block, per-channel firing offsets in ns for
// the single-return modes (strongest, last, first).
var firingOffsetsSingle = FiringTimeTable{
	{
		0, 167, 334, 500, 667, 834, 1001, 1168,
		1334, 1501, 1668, 1835, 2002, 2168, 2335, 2502,
		2669, 2836, 3002, 3169, 3336, 3503, 3670, 3836,
		4003, 4170, 4337, 4504, 4670, 4837, 5004, 5171,
	},
	{
		5555, 5722, 5889, 6055, 6222, 6389, 6556, 6723,
		6889, 7056, 7223, 7390, 7557, 7723, 7890, 8057,
		8224, 8391, 8557, 8724, 8891, 9058, 9225, 9391,
		9558, 9725, 9892, 10059, 10225, 10392, 10559, 10726,
	},
	{
		11110, 11277, 11444, 11610, 11777, 11944, 12111, 12278,
		12444, 12611, 12778, 12945, 13112, 13278, 13445, 13612,
		13779, 13946, 14112, 14279, 14446, 14613, 14780, 14946,
		15113, 15280, 15447, 15614, 15780, 15947, 16114, 16281,
	},
	{
		16665, 16832, 16999, 17165, 17332, 17499, 17666, 17833,
		17999, 18166, 18333, 18500, 18667, 18833, 19000, 19167,
		19334, 19501, 19667, 19834, 20001, 20168, 20335, 20501,
		20668, 20835, 21002, 21169, 21335, 21502, 21669, 21836,
	},
	{
		22220, 22387, 22554, 22720, 22887, 23054, 23221, 23388,
		23554, 23721, 23888, 24055, 24222, 24388, 24555, 24722,
		24889, 25056, 25222, 25389, 25556, 25723, 25890, 26056,
		26223, 26390, 26557, 26724, 26890, 27057, 27224, 27391,
	},
	{
		27775, 27942, 28109, 28275, 28442, 28609, 28776, 28943,
		29109, 29276, 29443, 29610, 29777, 29943, 30110, 30277,
		30444, 30611, 30777, 30944, 31111, 31278, 31445, 31611,
		31778, 31945, 32112, 32279, 32445, 32612, 32779, 32946,
	},
	{
		33330, 33497, 33664, 33830, 33997, 34164, 34331, 34498,
		34664, 34831, 34998, 35165, 35332, 35498, 35665, 35832,
		35999, 36166, 36332, 36499, 36666, 36833, 37000, 37166,
		37333, 37500, 37667, 37834, 38000, 38167, 38334, 38501,
	},
	{
		38885, 39052, 39219, 39385, 39552, 39719, 39886, 40053,
		40219, 40386, 40553, 40720, 40887, 41053, 41220, 41387,
		41554, 41721, 41887, 42054, 42221, 42388, 42555, 42721,
		42888, 43055, 43222, 43389, 43555, 43722, 43889, 44056,
	},
	{
		44440, 44607, 44774, 44940, 45107, 45274, 45441, 45608,
		45774, 45941, 46108, 46275, 46442, 46608, 46775, 46942,
		47109, 47276, 47442, 47609, 47776, 47943, 48110, 48276,
		48443, 48610, 48777, 48944, 49110, 49277, 49444, 49611,
	},
	{
		49995, 50162, 50329, 50495, 50662, 50829, 50996, 51163,
		51329, 51496, 51663, 51830, 51997, 52163, 52330, 52497,
		52664, 52831, 52997, 53164, 53331, 53498, 53665, 53831,
		53998, 54165, 54332, 54499, 54665, 54832, 54999, 55166,
	},
	{
		55550, 55717, 55884, 56050, 56217, 56384, 56551, 56718,
		56884, 57051, 57218, 57385, 57552, 57718, 57885, 58052,
		58219, 58386, 58552, 58719, 58886, 59053, 59220, 59386,
		59553, 59720, 59887, 60054, 60220, 60387, 60554, 60721,
	},
	{
		61105, 61272, 61439, 61605, 61772, 61939, 62106, 62273,
		62439, 62606, 62773, 62940, 63107, 63273, 63440, 63607,
		63774, 63941, 64107, 64274, 64441, 64608, 64775, 64941,
		65108, 65275, 65442, 65609, 65775, 65942, 66109, 66276,
	},
}

// firingOffsetsDual holds the dual-return offsets. Blocks 2k and 2k+1 carry
// the two returns of one firing and share timestamps.
var firingOffsetsDual = FiringTimeTable{
	{
		0, 167, 334, 500, 667, 834, 1001, 1168,
		1334, 1501, 1668, 1835, 2002, 2168, 2335, 2502,
		2669, 2836, 3002, 3169, 3336, 3503, 3670, 3836,
		4003, 4170, 4337, 4504, 4670, 4837, 5004, 5171,
	},
	{
		0, 167, 334, 500, 667, 834, 1001, 1168,
		1334, 1501, 1668, 1835, 2002, 2168, 2335, 2502,
		2669, 2836, 3002, 3169, 3336, 3503, 3670, 3836,
		4003, 4170, 4337, 4504, 4670, 4837, 5004, 5171,
	},
	{
		5555, 5722, 5889, 6055, 6222, 6389, 6556, 6723,
		6889, 7056, 7223, 7390, 7557, 7723, 7890, 8057,
		8224, 8391, 8557, 8724, 8891, 9058, 9225, 9391,
		9558, 9725, 9892, 10059, 10225, 10392, 10559, 10726,
	},
	{
		5555, 5722, 5889, 6055, 6222, 6389, 6556, 6723,
		6889, 7056, 7223, 7390, 7557, 7723, 7890, 8057,
		8224, 8391, 8557, 8724, 8891, 9058, 9225, 9391,
		9558, 9725, 9892, 10059, 10225, 10392, 10559, 10726,
	},
	{
		11110, 11277, 11444, 11610, 11777, 11944, 12111, 12278,
		12444, 12611, 12778, 12945, 13112, 13278, 13445, 13612,
		13779, 13946, 14112, 14279, 14446, 14613, 14780, 14946,
		15113, 15280, 15447, 15614, 15780, 15947, 16114, 16281,
	},
	{
		11110, 11277, 11444, 11610, 11777, 11944, 12111, 12278,
		12444, 12611, 12778, 12945, 13112, 13278, 13445, 13612,
		13779, 13946, 14112, 14279, 14446, 14613, 14780, 14946,
		15113, 15280, 15447, 15614, 15780, 15947, 16114, 16281,
	},
	{
		16665, 16832, 16999, 17165, 17332, 17499, 17666, 17833,
		17999, 18166, 18333, 18500, 18667, 18833, 19000, 19167,
		19334, 19501, 19667, 19834, 20001, 20168, 20335, 20501,
		20668, 20835, 21002, 21169, 21335, 21502, 21669, 21836,
	},
	{
		16665, 16832, 16999, 17165, 17332, 17499, 17666, 17833,
		17999, 18166, 18333, 18500, 18667, 18833, 19000, 19167,
		19334, 19501, 19667, 19834, 20001, 20168, 20335, 20501,
		20668, 20835, 21002, 21169, 21335, 21502, 21669, 21836,
	},
	{
		22220, 22387, 22554, 22720, 22887, 23054, 23221, 23388,
		23554, 23721, 23888, 24055, 24222, 24388, 24555, 24722,
		24889, 25056, 25222, 25389, 25556, 25723, 25890, 26056,
		26223, 26390, 26557, 26724, 26890, 27057, 27224, 27391,
	},
	{
		22220, 22387, 22554, 22720, 22887, 23054, 23221, 23388,
		23554, 23721, 23888, 24055, 24222, 24388, 24555, 24722,
		24889, 25056, 25222, 25389, 25556, 25723, 25890, 26056,
		26223, 26390, 26557, 26724, 26890, 27057, 27224, 27391,
	},
	{
		27775, 27942, 28109, 28275, 28442, 28609, 28776, 28943,
		29109, 29276, 29443, 29610, 29777, 29943, 30110, 30277,
		30444, 30611, 30777, 30944, 31111, 31278, 31445, 31611,
		31778, 31945, 32112, 32279, 32445, 32612, 32779, 32946,
	},
	{
		27775, 27942, 28109, 28275, 28442, 28609, 28776, 28943,
		29109, 29276, 29443, 29610, 29777, 29943, 30110, 30277,
		30444, 30611, 30777, 30944, 31111, 31278, 31445, 31611,
		31778, 31945, 32112, 32279, 32445, 32612, 32779, 32946,
	},
}
