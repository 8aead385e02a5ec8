package symgrid

// DefaultMaxDim 单层网格允许的最大行数/列数.
const DefaultMaxDim = 256

// DefaultArenaSlots 默认同时存活的层数上限.
const DefaultArenaSlots = 8

const snapshotMagic uint32 = 0x5347_5244 // "SGRD"
const snapshotVersion uint16 = 1

// snapshotPrealloc 读快照时按文件头预分配的段数上限
const snapshotPrealloc = 4096
