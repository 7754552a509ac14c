package model

import (
	"testing"

	"github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func TestAssignRooms(t *testing.T) {
	t.Run("Every session gets a room", func(t *testing.T) {
		g := gomega.NewWithT(t)

		//** Arrange
		input := verifyInput(t)
		timetable := verifyTimetable()

		//** Act
		err := assignRooms(timetable, input)

		//** Assert
		g.Expect(err).NotTo(gomega.HaveOccurred())
		g.Expect(timetable[0][monday][0].Room).To(gomega.Equal("Room 1"))
		g.Expect(timetable[1][monday][1].Room).To(gomega.Equal("Room 1"))
		g.Expect(timetable[0][wednesday][2].Room).To(gomega.Equal("Lab 1"))
		g.Expect(timetable[0][wednesday][3].Room).To(gomega.Equal("Lab 1"))
		g.Expect(timetable[0][friday][0].Room).To(gomega.BeEmpty())
		g.Expect(verify(timetable, input, DefaultOptions())).To(gomega.Succeed())
	})

	t.Run("Concurrent sessions get distinct rooms", func(t *testing.T) {
		input := verifyInput(t)
		input.Classrooms, input.RoomNames = 2, []string{"North", "South"}
		timetable := verifyTimetable()
		timetable[1][monday][1] = Cell{Vacant: true}
		timetable[1][monday][0] = staffedCell(1, 1)

		err := assignRooms(timetable, input)

		assert.Nil(t, err)
		assert.ElementsMatch(t, []string{"North", "South"}, []string{timetable[0][monday][0].Room, timetable[1][monday][0].Room})
	})

	t.Run("Not enough rooms", func(t *testing.T) {
		input := verifyInput(t)
		input.LabRoomNames = nil
		timetable := verifyTimetable()

		err := assignRooms(timetable, input)

		assert.ErrorContains(t, err, "Wednesday 11:00-12:00")
	})
}
