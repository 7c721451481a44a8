package algorithms

import (
	"container/list"
	"fmt"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// ShortestPath finds a shortest co-star chain between two actors using
// bidirectional BFS. It returns nil when the actors are not connected.
func ShortestPath(g *graph.Graph, startID, endID string) ([]string, error) {
	for _, id := range []string{startID, endID} {
		if !g.HasNode(id) {
			return nil, fmt.Errorf("shortest path: unknown node %q", id)
		}
	}
	if startID == endID {
		return []string{startID}, nil
	}

	// Forward search from start
	forwardQueue := list.New()
	forwardVisited := map[string]string{startID: startID} // node -> parent
	forwardQueue.PushBack(startID)

	// Backward search from end
	backwardQueue := list.New()
	backwardVisited := map[string]string{endID: endID}
	backwardQueue.PushBack(endID)

	// Bidirectional BFS
	for forwardQueue.Len() > 0 && backwardQueue.Len() > 0 {
		if meeting, ok := expandFrontier(g, forwardQueue, forwardVisited, backwardVisited); ok {
			return reconstructPath(meeting, forwardVisited, backwardVisited), nil
		}
		if meeting, ok := expandFrontier(g, backwardQueue, backwardVisited, forwardVisited); ok {
			return reconstructPath(meeting, forwardVisited, backwardVisited), nil
		}
	}

	return nil, nil // No path found
}

// expandFrontier expands one level of BFS from the queue
func expandFrontier(
	g *graph.Graph,
	queue *list.List,
	visited map[string]string,
	otherVisited map[string]string,
) (string, bool) {
	// Process one level
	levelSize := queue.Len()
	for i := 0; i < levelSize; i++ {
		currentID := queue.Remove(queue.Front()).(string)

		for _, neighborID := range g.Neighbors(currentID) {
			// Check if we've met the other search
			if _, found := otherVisited[neighborID]; found {
				if _, seen := visited[neighborID]; !seen {
					visited[neighborID] = currentID
				}
				return neighborID, true
			}

			if _, seen := visited[neighborID]; !seen {
				visited[neighborID] = currentID
				queue.PushBack(neighborID)
			}
		}
	}

	return "", false
}

// reconstructPath builds the path from start to end
func reconstructPath(
	meetingNode string,
	forwardVisited map[string]string,
	backwardVisited map[string]string,
) []string {
	// Build forward path (start -> meeting)
	forwardPath := make([]string, 0)
	node := meetingNode
	for node != forwardVisited[node] {
		forwardPath = append(forwardPath, node)
		node = forwardVisited[node]
	}
	forwardPath = append(forwardPath, node) // Add start node

	for i, j := 0, len(forwardPath)-1; i < j; i, j = i+1, j-1 {
		forwardPath[i], forwardPath[j] = forwardPath[j], forwardPath[i]
	}

	// Build backward path (meeting -> end), excluding meeting node
	node = meetingNode
	for node != backwardVisited[node] {
		node = backwardVisited[node]
		forwardPath = append(forwardPath, node)
	}

	return forwardPath
}

// Distances returns the hop count from source to every reachable node.
func Distances(g *graph.Graph, sourceID string) (map[string]int, error) {
	if !g.HasNode(sourceID) {
		return nil, fmt.Errorf("distances: unknown node %q", sourceID)
	}
	distances := map[string]int{sourceID: 0}

	queue := list.New()
	queue.PushBack(sourceID)

	for queue.Len() > 0 {
		currentID := queue.Remove(queue.Front()).(string)
		currentDist := distances[currentID]

		for _, neighborID := range g.Neighbors(currentID) {
			if _, visited := distances[neighborID]; !visited {
				distances[neighborID] = currentDist + 1
				queue.PushBack(neighborID)
			}
		}
	}

	return distances, nil
}
