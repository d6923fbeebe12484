package connectfour

import (
	"strconv"
	"strings"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const readyToken = "R"

const (
	msgWelcome          = "[Player %d] Welcome to connect4"
	msgReadyPrompt      = "Type R when you're ready to play, game will start when both players are ready"
	msgYourTurn         = "[%s] Your turn!"
	msgWaiting          = "Currently waiting for Player %d to make a move..."
	msgOpponentsTurn    = "Opponents turn.."
	msgEnterNumber      = "Enter a number between 1 to 7!"
	msgColumnFull       = "Column full! Try a different column!"
	msgYouWon           = "You won!"
	msgYouLost          = "The opponent has beaten you!"
	msgDraw             = "NO WINNER! The board is full."
	msgPlayAgain        = "To play again, reconnect to the server!"
	msgOpponentLeft     = "Your opponent has left the game."
	msgTimedOut         = "Timed out waiting for your input."
	msgOpponentTimedOut = "Your opponent timed out."
	msgShuttingDown     = "Server is shutting down."
)

const (
	boardHeader    = "1  2  3  4  5  6  7 "
	boardSeparator = "===================="
	cellPadding    = "  "
)

// renderBoard returns the text lines a board is drawn with on the wire.
func renderBoard(board *entity.Board) []string {
	lines := make([]string, 0, entity.Rows+3)
	lines = append(lines, boardHeader, boardSeparator)

	var sb strings.Builder
	for row := 0; row < entity.Rows; row++ {
		sb.Reset()
		for column := 0; column < entity.Columns; column++ {
			sb.WriteByte(board.Cell(row, column).Token())
			sb.WriteString(cellPadding)
		}
		lines = append(lines, sb.String())
	}

	return append(lines, boardSeparator)
}

// parseColumn converts a 1-based column typed by a player into a board index.
func parseColumn(line string) (int, bool) {
	column, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || column < 1 || column > entity.Columns {
		return 0, false
	}

	return column - 1, true
}

func isReady(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), readyToken)
}
