package chart

import "time"

// Capacity is the number of points each chart keeps.
const Capacity = 60

// Point is one (timestamp, value) pair on a chart.
type Point struct {
	Time  time.Time
	Value float64
}

// Buffer is a FIFO of points bounded by its capacity.
type Buffer struct {
	points   []Point
	capacity int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = Capacity
	}
	return &Buffer{points: make([]Point, 0, capacity+1), capacity: capacity}
}

// Append pushes p and drops the oldest point once over capacity.
func (b *Buffer) Append(p Point) {
	b.points = append(b.points, p)
	if len(b.points) > b.capacity {
		copy(b.points, b.points[1:])
		b.points = b.points[:len(b.points)-1]
	}
}

// Points returns the buffered points oldest first. Callers must not modify it.
func (b *Buffer) Points() []Point { return b.points }

func (b *Buffer) Len() int { return len(b.points) }

// Last returns the newest point.
func (b *Buffer) Last() (Point, bool) {
	if len(b.points) == 0 {
		return Point{}, false
	}
	return b.points[len(b.points)-1], true
}

// Max returns the largest buffered value, or 0 when empty.
func (b *Buffer) Max() float64 {
	var m float64
	for _, p := range b.points {
		if p.Value > m {
			m = p.Value
		}
	}
	return m
}
