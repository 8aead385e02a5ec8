// Package symgrid 地形分块的符号网格预留引擎.
//
// 一个 Level 管理 rows x cols 的格子，横纵两个方向各维护一份空闲段集合：
//   - EndPositionIndex：按 (所在线, 结束位置) 排序的红黑树，负责按坐标 best fit 切分；
//   - LengthIndex：按长度分桶的 Fenwick，负责统计可放置位置数并按序号取位置，
//     随机预留时先数出 n 个位置，再均匀取 [1, n] 中的 k，取第 k 个.
//
// 子层可以挂到父层上，子层的每次预留都会加上行偏移后同步到父层.
// 所有后备存储都来自固定槽位的 Arena，层用完必须 Destroy.
//
// 坐标从 0 开始，段区间左闭右开.
package symgrid
