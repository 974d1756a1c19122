package consts

const (
	// Number of system area sectors.
	ISO9660_SYSTEM_AREA_SECTORS = 16

	// Standard ISO9660 identifier.
	ISO9660_STD_IDENTIFIER = "CD001"

	// ISO9660 volume descriptor version (always 1).
	ISO9660_VOLUME_DESC_VERSION = 1

	// ISO9660 default sector size.
	ISO9660_SECTOR_SIZE = 2048

	// ISO9660 volume descriptor header size
	ISO9660_VOLUME_DESC_HEADER_SIZE = 7

	// ISO9660 application use area size
	ISO9660_APPLICATION_USE_SIZE = 512

	// JOLIET level 1, 2, and 3 escape sequences.
	JOLIET_LEVEL_1_ESCAPE = "%/@"
	JOLIET_LEVEL_2_ESCAPE = "%/C"
	JOLIET_LEVEL_3_ESCAPE = "%/E"

	// El Torito bootable cdrom system identifier.
	EL_TORITO_BOOT_SYSTEM_ID = "EL TORITO SPECIFICATION"

	// a-characters set which are specified in the International Reference Version at the following positions.
	//   | 2/0 - 2/2
	//   | 2/5 - 2/15
	//   | 3/0 - 3/15
	//   | 4/1 - 4/15
	//   | 5/0 - 5/10
	//   | 5/15
	A_CHARACTERS = " !\"%&'()*+,-./0123456789:;<=>?ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// c-characters set which are the coded graphic character sets identified by the escape sequences in a Joliet SVD.
	// | All code points between (00)(00) and (00)(1F), inclusive. (Control Characters)
	// | (00)(2A) '*'(Asterisk)
	// | (00)(2F) '/' (Forward Slash)
	// | (00)(3A) ':' (Colon)
	// | (00)(3B) ';' (Semicolon)
	// | (00)(3F) '?' (Question Mark)
	// | (00)(5C) '\' (Backslash)

	// a1-characters set which are a subset of the c-characters. This subset shall be subject to agreement between the
	// originator and the recipient of the volume.

	// d-characters: 37 characters in the following positions of the International Reference Version
	// | 3/0 - 3/9
	// | 4/1 - 5/10
	// | 5/15
	D_CHARACTERS = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// Separators allowed by ISO9660 0x2E and 0x3B.
	ISO9660_SEPARATOR_1 = "."
	ISO9660_SEPARATOR_2 = ";"

	// ISO9660 Filler 0x20 (space)
	ISO9660_FILLER = " "

	// Standard UDF Identifier
	UDF_STD_IDENTIFIER = "BEA01"

	// UDF default sector size.
	UDF_SECTOR_SIZE = 2048

	// ISO_MAX_EXTENT is the largest byte length a single ISO 9660 extent can
	// describe in a 32-bit data_len field (4 GiB - 2 KiB). Files larger than
	// this are either skipped or chained across multiple directory records
	// when fragmentation is allowed.
	ISO_MAX_EXTENT = 0xFFFFF800

	// ISO 9660 directory nesting depth caps.
	ISO9660_MAX_DIR_DEPTH_STRICT = 8
	ISO9660_MAX_DIR_DEPTH_RELAXED = 255

	// Interchange-level name length caps, in bytes, for the whole
	// "stem.ext;version" production (before the optional ";1" suffix).
	ISO9660_LEVEL1_STEM_LEN = 8
	ISO9660_LEVEL1_EXT_LEN  = 3
	ISO9660_LEVEL2_NAME_LEN = 31
	ISO9660_LEVEL3_NAME_LEN = 31
	ISO9660_1999_NAME_LEN   = 207

	// Joliet UCS-2 name length caps, in code units.
	JOLIET_NAME_LEN_SHORT = 64
	JOLIET_NAME_LEN_LONG  = 101

	// UDF compressed unicode name cap, in bytes, including the 1-byte
	// compression id.
	UDF_NAME_LEN_MAX = 254

	// File version suffix appended when include_file_version_info is set.
	ISO9660_FILE_VERSION_SUFFIX = ";1"

	// UDF unique identifiers below this value are reserved; real nodes are
	// numbered starting here (the root itself uses 0).
	UDF_FIRST_UNIQUE_ID = 16
)
