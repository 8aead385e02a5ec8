package symgrid

import (
	"bufio"
	"encoding/binary"
	"io"
)

// BinWriter 带缓冲的定长整数写入器，第一次出错后后续写入全部忽略，错误由 Flush 返回.
type BinWriter struct {
	writer    *bufio.Writer
	order     binary.ByteOrder
	endianBuf [8]byte
	err       error
}

func NewBinWriter(file io.Writer, littleEndian bool) *BinWriter {
	return &BinWriter{
		writer: bufio.NewWriter(file),
		order:  byteOrder(littleEndian),
	}
}

func byteOrder(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (w *BinWriter) write(bts []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.writer.Write(bts)
}

func (w *BinWriter) WriteUint16(v uint16) {
	w.order.PutUint16(w.endianBuf[:2], v)
	w.write(w.endianBuf[:2])
}

func (w *BinWriter) WriteUint32(v uint32) {
	w.order.PutUint32(w.endianBuf[:4], v)
	w.write(w.endianBuf[:4])
}

func (w *BinWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.writer.Flush()
}

// BinReader 与 BinWriter 对应的读取器，出错后返回零值，错误由 Err 返回.
type BinReader struct {
	reader    io.Reader
	order     binary.ByteOrder
	endianBuf [8]byte
	err       error
}

func NewBinReader(file io.Reader, littleEndian bool) *BinReader {
	return &BinReader{
		reader: bufio.NewReader(file),
		order:  byteOrder(littleEndian),
	}
}

func (r *BinReader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	if _, err := io.ReadFull(r.reader, r.endianBuf[:n]); err != nil {
		r.err = err
		return nil
	}
	return r.endianBuf[:n]
}

func (r *BinReader) ReadUint16() uint16 {
	b := r.read(2)
	if b == nil {
		return 0
	}
	return r.order.Uint16(b)
}

func (r *BinReader) ReadUint32() uint32 {
	b := r.read(4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

func (r *BinReader) Err() error { return r.err }
